// Package testing flips the process into test mode when imported by test
// binaries, so command entrypoints never start real servers.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("GRIDPULSE_TEST_MODE", "1")
	})
}

func init() {
	ensureTestMode()
}

// TestMain can be assigned by packages that want the guarantee explicitly.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
