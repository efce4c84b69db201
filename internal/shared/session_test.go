package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpulse/console/internal/shared"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "gp_session", "secret", time.Hour, false), mr
}

func roundTrip(t *testing.T, sm *shared.SessionManager, cookie *http.Cookie) *shared.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return sess
}

func commit(t *testing.T, sm *shared.SessionManager, sess *shared.Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rec, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionPersistsValuesAndFlashes(t *testing.T) {
	sm, _ := newManager(t)

	sess := roundTrip(t, sm, nil)
	sess.Set("api_token", "abc")
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Saved"})
	cookie := commit(t, sm, sess)

	again := roundTrip(t, sm, cookie)
	assert.Equal(t, sess.ID, again.ID)
	assert.Equal(t, "abc", again.Get("api_token"))

	flash := again.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Saved", flash.Message)
	commit(t, sm, again)

	third := roundTrip(t, sm, cookie)
	assert.Nil(t, third.PopFlash())
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	sm, _ := newManager(t)

	sess := roundTrip(t, sm, &http.Cookie{Name: sm.CookieName(), Value: "forged"})
	assert.NotEqual(t, "forged", sess.ID)
	assert.Empty(t, sess.Get("api_token"))
}

func TestDestroyRemovesStoredSession(t *testing.T) {
	sm, mr := newManager(t)

	sess := roundTrip(t, sm, nil)
	sess.Set("api_token", "abc")
	cookie := commit(t, sm, sess)
	require.True(t, mr.Exists("gridpulse:session:"+sess.ID))

	loaded := roundTrip(t, sm, cookie)
	sm.Destroy(loaded)
	cleared := commit(t, sm, loaded)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.False(t, mr.Exists("gridpulse:session:"+sess.ID))
}

func TestCSRFTokenLifecycle(t *testing.T) {
	sm, _ := newManager(t)
	csrf := shared.NewCSRFManager("csrfsecret")
	sess := roundTrip(t, sm, nil)

	token, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	again, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, csrf.VerifyToken(context.Background(), sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, "nope"), shared.ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, ""), shared.ErrCSRFTokenMissing)
}

type friendlyErr struct{}

func (friendlyErr) Error() string       { return "raw" }
func (friendlyErr) UserMessage() string { return "Friendly" }

func TestUserSafeMessage(t *testing.T) {
	assert.Equal(t, "", shared.UserSafeMessage(nil))
	assert.Equal(t, "Friendly", shared.UserSafeMessage(friendlyErr{}))
	assert.Equal(t, "The requested record was not found.", shared.UserSafeMessage(shared.ErrNotFound))
	assert.Equal(t, "Something went wrong. Please try again.", shared.UserSafeMessage(context.Canceled))
}
