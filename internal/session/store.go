package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/shared"
)

const (
	tokenKey    = "api_token"
	identityKey = "identity"

	// finishedTTL bounds how long an unclaimed restore result is kept.
	finishedTTL = 5 * time.Minute
)

// ErrNoToken is returned by Refresh when the session is not signed in.
var ErrNoToken = errors.New("session has no token")

// Backend is the subset of the auth API the store relies on.
type Backend interface {
	Login(ctx context.Context, username, password string) (gateway.Token, error)
	CurrentUser(ctx context.Context) (gateway.User, error)
	Permissions(ctx context.Context) (gateway.PermissionSet, error)
}

// Credentials are submitted by the login form.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type restoreResult struct {
	token    string
	identity *Identity
	err      error
	done     time.Time
}

// Store owns the signed-in identity of every browser session.
type Store struct {
	backend Backend
	logger  *slog.Logger
	wait    time.Duration
	now     func() time.Time

	group singleflight.Group
	// finished holds completed restores until a later request claims them
	// or finishedTTL passes.
	finished sync.Map
}

// NewStore constructs a Store. wait bounds how long a request blocks on a
// silent restore before it is answered with a loading state; zero waits forever.
func NewStore(backend Backend, logger *slog.Logger, wait time.Duration) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger, wait: wait, now: time.Now}
}

// Unauthorized reports whether err is the backend rejecting the bearer token.
func Unauthorized(err error) bool {
	var gwErr *gateway.Error
	return errors.As(err, &gwErr) && gwErr.Status == http.StatusUnauthorized
}

// Token returns the bearer token held by sess.
func Token(sess *shared.Session) string {
	if sess == nil {
		return ""
	}
	return sess.Get(tokenKey)
}

// Login exchanges credentials for a token and loads the identity.
// On any failure the session is left signed out.
func (s *Store) Login(ctx context.Context, sess *shared.Session, creds Credentials) (*Identity, error) {
	if sess == nil {
		return nil, shared.ErrSessionMissing
	}
	token, err := s.backend.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		s.clear(sess)
		return nil, err
	}
	if token.AccessToken == "" {
		s.clear(sess)
		return nil, &gateway.Error{Status: http.StatusBadGateway, Message: "Login failed"}
	}
	sess.Set(tokenKey, token.AccessToken)

	identity, err := s.fetch(gateway.WithToken(ctx, token.AccessToken))
	if err != nil {
		s.clear(sess)
		return nil, err
	}
	s.save(sess, identity)
	return identity, nil
}

// Logout forgets the token and identity without contacting the backend.
func (s *Store) Logout(sess *shared.Session) {
	if sess == nil {
		return
	}
	s.finished.Delete(sess.ID)
	s.clear(sess)
}

// Restore returns the session state, silently loading the identity when only
// a token is held. A failed restore signs the session out.
func (s *Store) Restore(ctx context.Context, sess *shared.Session) State {
	if sess == nil {
		return State{}
	}
	token := sess.Get(tokenKey)
	if token == "" {
		if sess.Get(identityKey) != "" {
			s.clear(sess)
		}
		return State{}
	}
	if s.expired(token) {
		s.logger.Info("session token expired", slog.String("session", sess.ID))
		s.finished.Delete(sess.ID)
		s.clear(sess)
		return State{}
	}
	if identity := load(sess); identity != nil {
		return State{Identity: identity}
	}

	if v, ok := s.finished.LoadAndDelete(sess.ID); ok {
		if res := v.(restoreResult); res.token == token && s.now().Sub(res.done) < finishedTTL {
			return s.apply(sess, res)
		}
	}

	ch := s.group.DoChan(sess.ID, func() (any, error) {
		// The fetch outlives the request that started it.
		fetchCtx := gateway.WithToken(context.WithoutCancel(ctx), token)
		identity, err := s.fetch(fetchCtx)
		res := restoreResult{token: token, identity: identity, err: err, done: s.now()}
		s.sweep(res.done)
		s.finished.Store(sess.ID, res)
		return res, nil
	})

	var timeout <-chan time.Time
	if s.wait > 0 {
		timer := time.NewTimer(s.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case out := <-ch:
		s.finished.Delete(sess.ID)
		return s.apply(sess, out.Val.(restoreResult))
	case <-timeout:
		return State{Loading: true}
	case <-ctx.Done():
		return State{Loading: true}
	}
}

// Refresh re-fetches the identity after the profile changed.
func (s *Store) Refresh(ctx context.Context, sess *shared.Session) (*Identity, error) {
	token := Token(sess)
	if token == "" {
		return nil, ErrNoToken
	}
	identity, err := s.fetch(gateway.WithToken(ctx, token))
	if err != nil {
		return nil, err
	}
	s.save(sess, identity)
	return identity, nil
}

// Middleware resolves the session state once per request and exposes it
// through FromContext. The bearer token is attached for gateway calls.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		state := s.Restore(r.Context(), sess)
		ctx := WithState(r.Context(), state)
		if token := Token(sess); token != "" {
			ctx = gateway.WithToken(ctx, token)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sweep drops unclaimed restore results older than finishedTTL.
func (s *Store) sweep(now time.Time) {
	s.finished.Range(func(key, v any) bool {
		if now.Sub(v.(restoreResult).done) >= finishedTTL {
			s.finished.Delete(key)
		}
		return true
	})
}

// expired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens are left to the backend to reject.
func (s *Store) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time)
}

func (s *Store) apply(sess *shared.Session, res restoreResult) State {
	if res.err != nil {
		s.logger.Info("session restore failed", slog.String("session", sess.ID), slog.Any("error", res.err))
		s.clear(sess)
		return State{}
	}
	s.save(sess, res.identity)
	return State{Identity: res.identity}
}

// fetch loads the profile and the permission names. Permission failures
// degrade to empty sets.
func (s *Store) fetch(ctx context.Context) (*Identity, error) {
	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := s.backend.Permissions(ctx)
	if err != nil {
		s.logger.Warn("permissions prefetch failed", slog.Any("error", err))
		perms = gateway.PermissionSet{}
	}
	return newIdentity(user, perms), nil
}

func (s *Store) save(sess *shared.Session, identity *Identity) {
	raw, err := json.Marshal(identity)
	if err != nil {
		s.logger.Error("encode identity", slog.Any("error", err))
		return
	}
	sess.Set(identityKey, string(raw))
	sess.SetUser(strconv.FormatInt(identity.ID, 10))
}

func (s *Store) clear(sess *shared.Session) {
	sess.Delete(tokenKey, identityKey)
	sess.SetUser("")
}

func load(sess *shared.Session) *Identity {
	raw := sess.Get(identityKey)
	if raw == "" {
		return nil
	}
	var identity Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil
	}
	return &identity
}
