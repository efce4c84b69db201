package app

import (
	"os"
	"strconv"
	"sync/atomic"
)

const testModeEnv = "GRIDPULSE_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether command entrypoints should skip starting servers.
// The environment is read on first use and cached.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads GRIDPULSE_TEST_MODE and returns the new value.
func RefreshTestMode() bool {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	testMode.Store(&on)
	return on
}
