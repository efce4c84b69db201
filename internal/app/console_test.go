package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gridpulse/console/internal/mockapi"
	"github.com/gridpulse/console/internal/observability"
)

var (
	csrfPattern       = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
	deleteLinkPattern = regexp.MustCompile(`href="/admin/(\d+)/delete"`)
)

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newConsole(t *testing.T) *browser {
	t.Helper()
	return newConsoleWithTokenTTL(t, time.Hour)
}

func newConsoleWithTokenTTL(t *testing.T, tokenTTL time.Duration) *browser {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := mockapi.NewStore(bcrypt.MinCost)
	require.NoError(t, err)
	api := httptest.NewServer(mockapi.NewServer(logger, store, mockapi.NewTokens("test-secret", tokenTTL)).Routes())
	t.Cleanup(api.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &Config{
		AppEnv:            "test",
		AppRequestTimeout: 5 * time.Second,
		APIBaseURL:        api.URL,
		APITimeout:        5 * time.Second,
		SessionCookie:     "gridpulse_session",
		SessionSecret:     "session-secret",
		SessionTTL:        time.Hour,
		RestoreWait:       2 * time.Second,
		CSRFSecret:        "csrf-secret",
	}
	handler, err := NewConsole(Deps{Config: cfg, Logger: logger, Redis: rdb, Metrics: observability.NewMetrics()})
	require.NoError(t, err)
	console := httptest.NewServer(handler)
	t.Cleanup(console.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: console.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) csrf(path string) string {
	b.t.Helper()
	_, body := b.get(path)
	m := csrfPattern.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "csrf token on %s", path)
	return m[1]
}

func (b *browser) signIn(username, password string) *http.Response {
	b.t.Helper()
	token := b.csrf("/login")
	resp, _ := b.post("/login", url.Values{
		"csrf_token": {token},
		"username":   {username},
		"password":   {password},
	})
	return resp
}

func TestConsoleSignInAndBrowse(t *testing.T) {
	b := newConsole(t)

	resp := b.signIn(mockapi.SuperAdminUsername, mockapi.SuperAdminPassword)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, body := b.get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "10,000")
	assert.Contains(t, body, "Welcome back")
	assert.Contains(t, body, `href="/admin"`)

	resp, body = b.get("/users?number=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "user3@example.com")

	resp, body = b.get("/users?number=999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "No user found")

	resp, body = b.get("/analytics?range=30d")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="30d" selected`)

	resp, body = b.get("/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/admin/new")
	assert.Contains(t, body, "/admin/assign")
	assert.Contains(t, body, "arjun2024")
}

func TestConsoleAdminCreateFlow(t *testing.T) {
	b := newConsole(t)
	require.Equal(t, http.StatusSeeOther, b.signIn(mockapi.SuperAdminUsername, mockapi.SuperAdminPassword).StatusCode)

	token := b.csrf("/admin/new")
	resp, _ := b.post("/admin", url.Values{
		"csrf_token": {token},
		"name":       {"Field Analyst"},
		"email":      {"field.analyst@example.com"},
		"password":   {"secret123"},
		"role":       {"Analyst"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	_, body := b.get("/admin?q=field.analyst")
	assert.Contains(t, body, "Admin created successfully")
	assert.Contains(t, body, "field.analyst@example.com")
}

func (b *browser) createAdmin(name, email string) string {
	b.t.Helper()
	token := b.csrf("/admin/new")
	resp, _ := b.post("/admin", url.Values{
		"csrf_token": {token},
		"name":       {name},
		"email":      {email},
		"password":   {"secret123"},
		"role":       {"Analyst"},
	})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)

	_, body := b.get("/admin?q=" + url.QueryEscape(email))
	require.Contains(b.t, body, email)
	m := deleteLinkPattern.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "delete link for %s", email)
	return m[1]
}

func TestConsoleAdminDeleteFlow(t *testing.T) {
	b := newConsole(t)
	require.Equal(t, http.StatusSeeOther, b.signIn(mockapi.SuperAdminUsername, mockapi.SuperAdminPassword).StatusCode)
	id := b.createAdmin("Night Shift", "night.shift@example.com")

	resp, body := b.get("/admin/" + id + "/delete")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "night.shift@example.com")
	token := csrfPattern.FindStringSubmatch(body)[1]

	// Declining keeps the admin and changes nothing on the list.
	_, before := b.get("/admin")
	resp, _ = b.post("/admin/"+id+"/delete", url.Values{"csrf_token": {token}, "confirm": {"no"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
	_, after := b.get("/admin")
	assert.Equal(t, before, after)
	assert.Contains(t, after, "night.shift@example.com")

	resp, _ = b.post("/admin/"+id+"/delete", url.Values{"csrf_token": {token}, "confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp, body = b.get("/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Admin deleted successfully")
	assert.NotContains(t, body, "night.shift@example.com")
	assert.NotContains(t, body, `href="/admin/`+id+`/delete"`)
}

func TestConsoleExpiredTokenRedirectsToLogin(t *testing.T) {
	b := newConsoleWithTokenTTL(t, time.Second)
	require.Equal(t, http.StatusSeeOther, b.signIn(mockapi.SuperAdminUsername, mockapi.SuperAdminPassword).StatusCode)
	resp, _ := b.get("/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	time.Sleep(2500 * time.Millisecond)

	for _, path := range []string{"/admin", "/dashboard"} {
		resp, body := b.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
		assert.NotContains(t, body, "Could not validate credentials", path)
	}
	resp, _ = b.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestConsoleRenamedAccountSignsOut(t *testing.T) {
	b := newConsole(t)
	require.Equal(t, http.StatusSeeOther, b.signIn(mockapi.SuperAdminUsername, mockapi.SuperAdminPassword).StatusCode)

	// The token names the old username, so the backend rejects it from now on.
	token := b.csrf("/profile")
	resp, _ := b.post("/profile", url.Values{
		"csrf_token": {token},
		"username":   {"chief"},
		"email":      {"chief@example.com"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, body := b.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Your session has expired")

	resp, _ = b.get("/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	require.Equal(t, http.StatusSeeOther, b.signIn("chief", mockapi.SuperAdminPassword).StatusCode)
	resp, _ = b.get("/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestConsoleRoleLimitsNavigation(t *testing.T) {
	b := newConsole(t)
	require.Equal(t, http.StatusSeeOther, b.signIn("ishaana99", "Ishaana@99!").StatusCode)

	resp, body := b.get("/analytics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, `href="/users"`)

	resp, _ = b.get("/users")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestConsoleRejectsBadCredentials(t *testing.T) {
	b := newConsole(t)

	token := b.csrf("/login")
	resp, body := b.post("/login", url.Values{"csrf_token": {token}, "username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Incorrect username or password")
}

func TestConsoleRequiresCSRFToken(t *testing.T) {
	b := newConsole(t)
	b.get("/login")

	resp, _ := b.post("/login", url.Values{"username": {"admin"}, "password": {"admin123"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestConsoleLogout(t *testing.T) {
	b := newConsole(t)
	require.Equal(t, http.StatusSeeOther, b.signIn(mockapi.SuperAdminUsername, mockapi.SuperAdminPassword).StatusCode)

	token := b.csrf("/dashboard")
	resp, _ := b.post("/logout", url.Values{"csrf_token": {token}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestConsoleUnknownPathsRedirectToLogin(t *testing.T) {
	b := newConsole(t)
	for _, path := range []string{"/", "/nowhere"} {
		resp, _ := b.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestConsoleOperationalEndpoints(t *testing.T) {
	b := newConsole(t)

	resp, body := b.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, _ = b.get("/static/css/app.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))

	b.signIn(mockapi.SuperAdminUsername, mockapi.SuperAdminPassword)
	resp, body = b.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, "gridpulse_gateway_requests_total"))
	assert.Contains(t, body, "gridpulse_http_requests_total")
}
