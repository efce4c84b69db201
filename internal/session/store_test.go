package session_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/session"
	"github.com/gridpulse/console/internal/shared"
)

type fakeBackend struct {
	loginErr  error
	userErr   error
	permsErr  error
	token     string
	userCalls atomic.Int32
	release   chan struct{}
	gotToken  atomic.Value
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (gateway.Token, error) {
	if f.loginErr != nil {
		return gateway.Token{}, f.loginErr
	}
	return gateway.Token{AccessToken: f.token, TokenType: "bearer"}, nil
}

func (f *fakeBackend) CurrentUser(ctx context.Context) (gateway.User, error) {
	f.userCalls.Add(1)
	f.gotToken.Store(gateway.TokenFromContext(ctx))
	if f.release != nil {
		<-f.release
	}
	if f.userErr != nil {
		return gateway.User{}, f.userErr
	}
	return gateway.User{ID: 4, Username: "ops", Email: "ops@example.com"}, nil
}

func (f *fakeBackend) Permissions(ctx context.Context) (gateway.PermissionSet, error) {
	if f.permsErr != nil {
		return gateway.PermissionSet{}, f.permsErr
	}
	return gateway.PermissionSet{Roles: []string{"Admin"}, Permissions: []string{"home_dashboard"}}, nil
}

func newSession(t *testing.T) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	sm := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "gp", "secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func TestLoginMergesIdentity(t *testing.T) {
	backend := &fakeBackend{token: "tok"}
	store := session.NewStore(backend, nil, 0)
	sess := newSession(t)

	identity, err := store.Login(context.Background(), sess, session.Credentials{Username: "ops", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token(sess))
	assert.Equal(t, "tok", backend.gotToken.Load())
	assert.Equal(t, []string{"Admin"}, identity.Roles)
	assert.True(t, identity.HasPermission("home_dashboard"))
	assert.Equal(t, "4", sess.User())

	state := store.Restore(context.Background(), sess)
	require.True(t, state.Authenticated())
	assert.Equal(t, "ops", state.Identity.DisplayName())
	assert.Equal(t, int32(1), backend.userCalls.Load())
}

func TestLoginPermissionFailureYieldsEmptySets(t *testing.T) {
	store := session.NewStore(&fakeBackend{token: "tok", permsErr: errors.New("boom")}, nil, 0)
	sess := newSession(t)

	identity, err := store.Login(context.Background(), sess, session.Credentials{Username: "ops", Password: "pw"})
	require.NoError(t, err)
	assert.Empty(t, identity.Roles)
	assert.Empty(t, identity.Permissions)
	assert.NotNil(t, identity.Roles)
}

func TestLoginFailureLeavesSessionSignedOut(t *testing.T) {
	rejected := &gateway.Error{Status: http.StatusUnauthorized, Message: "Incorrect username or password"}
	store := session.NewStore(&fakeBackend{loginErr: rejected}, nil, 0)
	sess := newSession(t)

	_, err := store.Login(context.Background(), sess, session.Credentials{Username: "ops", Password: "bad"})
	require.ErrorIs(t, err, rejected)
	assert.Empty(t, session.Token(sess))
	assert.False(t, store.Restore(context.Background(), sess).Authenticated())

	store = session.NewStore(&fakeBackend{token: "tok", userErr: errors.New("me failed")}, nil, 0)
	_, err = store.Login(context.Background(), sess, session.Credentials{Username: "ops", Password: "pw"})
	require.Error(t, err)
	assert.Empty(t, session.Token(sess))
}

func TestLogoutClearsWithoutBackend(t *testing.T) {
	backend := &fakeBackend{token: "tok"}
	store := session.NewStore(backend, nil, 0)
	sess := newSession(t)
	_, err := store.Login(context.Background(), sess, session.Credentials{Username: "ops", Password: "pw"})
	require.NoError(t, err)

	store.Logout(sess)
	assert.Empty(t, session.Token(sess))
	assert.Empty(t, sess.User())
	assert.False(t, store.Restore(context.Background(), sess).Authenticated())
	assert.Equal(t, int32(1), backend.userCalls.Load())
}

func TestRestoreWithTokenOnly(t *testing.T) {
	backend := &fakeBackend{}
	store := session.NewStore(backend, nil, 0)
	sess := newSession(t)
	sess.Set("api_token", "stored")

	state := store.Restore(context.Background(), sess)
	require.True(t, state.Authenticated())
	assert.Equal(t, "stored", backend.gotToken.Load())
	assert.Equal(t, int32(1), backend.userCalls.Load())
}

func TestRestoreFailureClearsToken(t *testing.T) {
	store := session.NewStore(&fakeBackend{userErr: &gateway.Error{Status: http.StatusUnauthorized, Message: "expired"}}, nil, 0)
	sess := newSession(t)
	sess.Set("api_token", "expired")

	state := store.Restore(context.Background(), sess)
	assert.False(t, state.Authenticated())
	assert.False(t, state.Loading)
	assert.Empty(t, session.Token(sess))
}

func signedToken(t *testing.T, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "ops", ExpiresAt: jwt.NewNumericDate(expires)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestRestoreSignsOutExpiredToken(t *testing.T) {
	backend := &fakeBackend{token: signedToken(t, time.Now().Add(-time.Minute))}
	store := session.NewStore(backend, nil, 0)
	sess := newSession(t)
	sess.Set("api_token", backend.token)
	sess.Set("identity", `{"id":4,"username":"ops"}`)

	state := store.Restore(context.Background(), sess)
	assert.False(t, state.Authenticated())
	assert.Empty(t, session.Token(sess))
	assert.Empty(t, sess.Get("identity"))
	assert.Equal(t, int32(0), backend.userCalls.Load())
}

func TestRestoreKeepsLiveToken(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	store := session.NewStore(&fakeBackend{}, nil, 0)
	sess := newSession(t)
	sess.Set("api_token", token)
	sess.Set("identity", `{"id":4,"username":"ops"}`)

	state := store.Restore(context.Background(), sess)
	require.True(t, state.Authenticated())
	assert.Equal(t, token, session.Token(sess))
}

func TestUnauthorizedMatchesRejectedToken(t *testing.T) {
	rejected := fmt.Errorf("load admins: %w", &gateway.Error{Status: http.StatusUnauthorized, Message: "Could not validate credentials"})
	assert.True(t, session.Unauthorized(rejected))
	assert.False(t, session.Unauthorized(&gateway.Error{Status: http.StatusForbidden}))
	assert.False(t, session.Unauthorized(&gateway.Error{Message: gateway.ConnectMessage}))
	assert.False(t, session.Unauthorized(errors.New("boom")))
}

func TestConcurrentRestoresShareOneFetch(t *testing.T) {
	backend := &fakeBackend{release: make(chan struct{})}
	store := session.NewStore(backend, nil, 0)

	mr := miniredis.RunT(t)
	sm := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "gp", "secret", time.Hour, false)
	first, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	first.Set("api_token", "stored")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rec, first))
	cookie := rec.Result().Cookies()[0]

	// Parallel requests of one browser each load their own copy of the session.
	copies := make([]*shared.Session, 4)
	for i := range copies {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		copies[i], err = sm.Load(context.Background(), req)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	states := make([]session.State, len(copies))
	for i := range copies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = store.Restore(context.Background(), copies[i])
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(backend.release)
	wg.Wait()

	assert.Equal(t, int32(1), backend.userCalls.Load())
	for _, state := range states {
		assert.True(t, state.Authenticated())
	}
}

func TestRestoreReportsLoadingWhileSlow(t *testing.T) {
	backend := &fakeBackend{release: make(chan struct{})}
	store := session.NewStore(backend, nil, 10*time.Millisecond)
	sess := newSession(t)
	sess.Set("api_token", "stored")

	state := store.Restore(context.Background(), sess)
	assert.True(t, state.Loading)
	assert.Equal(t, "stored", session.Token(sess))

	close(backend.release)
	require.Eventually(t, func() bool {
		return store.Restore(context.Background(), sess).Authenticated()
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), backend.userCalls.Load())
}

func TestMiddlewareExposesState(t *testing.T) {
	store := session.NewStore(&fakeBackend{}, nil, 0)
	sess := newSession(t)
	sess.Set("api_token", "stored")

	var got session.State
	var token string
	handler := store.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = session.FromContext(r.Context())
		token = gateway.TokenFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, got.Authenticated())
	assert.Equal(t, "stored", token)
}

func TestIdentityMembershipIsVerbatim(t *testing.T) {
	identity := &session.Identity{Roles: []string{"Super-Admin"}, Permissions: []string{"home_dashboard"}}
	assert.True(t, identity.HasRole("Super-Admin"))
	assert.False(t, identity.HasRole("Admin"))
	assert.False(t, identity.HasRole("super-admin"))
	assert.True(t, identity.HasAnyRole("Admin", "Super-Admin"))
	assert.False(t, identity.HasPermission("Home_Dashboard"))

	var nobody *session.Identity
	assert.False(t, nobody.HasRole("Admin"))
	assert.Equal(t, "", nobody.DisplayName())
}
