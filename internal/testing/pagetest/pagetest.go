// Package pagetest wires the page rendering stack for handler tests.
package pagetest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/gridpulse/console/internal/guard"
	"github.com/gridpulse/console/internal/layout"
	"github.com/gridpulse/console/internal/session"
	"github.com/gridpulse/console/internal/shared"
	"github.com/gridpulse/console/internal/view"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GRIDPULSE_TEST_MODE") == "" {
			_ = os.Setenv("GRIDPULSE_TEST_MODE", "1")
		}
	})
}

// Harness bundles the collaborators every page handler needs.
type Harness struct {
	Logger   *slog.Logger
	Sessions *shared.SessionManager
	CSRF     *shared.CSRFManager
	Pages    *layout.Renderer
	Guard    *guard.Guard
}

// New builds a harness backed by an in-process Redis.
func New(t testing.TB) *Harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	csrf := shared.NewCSRFManager("csrfsecret")
	pages := layout.NewRenderer(engine, csrf, session.NewStore(nil, logger, 0), logger)
	return &Harness{
		Logger:   logger,
		Sessions: shared.NewSessionManager(client, "gp_test", "secret", time.Hour, false),
		CSRF:     csrf,
		Pages:    pages,
		Guard:    guard.New(pages, logger),
	}
}

// Request builds a request carrying a fresh session and the given state.
// A non-nil form is sent url-encoded.
func (h *Harness) Request(t testing.TB, method, target string, state session.State, form url.Values) (*http.Request, *shared.Session) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	sess, err := h.Sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = session.WithState(ctx, state)
	return req.WithContext(ctx), sess
}

// SignedIn returns the state of a user holding roles and permissions.
func SignedIn(roles, permissions []string) session.State {
	return session.State{Identity: &session.Identity{
		ID:          1,
		Username:    "operator",
		Email:       "operator@example.com",
		Roles:       roles,
		Permissions: permissions,
	}}
}
