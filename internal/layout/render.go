package layout

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gridpulse/console/internal/session"
	"github.com/gridpulse/console/internal/shared"
	"github.com/gridpulse/console/internal/view"
)

// ExpiredMessage is flashed on the login page after the backend rejects a token.
const ExpiredMessage = "Your session has expired. Please sign in again."

// Renderer wraps page templates in the shared frame.
type Renderer struct {
	engine *view.Engine
	csrf   *shared.CSRFManager
	store  *session.Store
	logger *slog.Logger
}

// NewRenderer constructs a Renderer. store signs out sessions whose token
// the backend rejects.
func NewRenderer(engine *view.Engine, csrf *shared.CSRFManager, store *session.Store, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{engine: engine, csrf: csrf, store: store, logger: logger}
}

// Expired reports whether err is the backend rejecting the session token.
// If so the session is signed out and the browser sent to the login page.
func (rd *Renderer) Expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !session.Unauthorized(err) {
		return false
	}
	sess := shared.SessionFromContext(r.Context())
	rd.logger.Info("backend rejected session token", slog.String("path", r.URL.Path), slog.Any("error", err))
	if rd.store != nil {
		rd.store.Logout(sess)
	}
	RedirectWithFlash(w, r, "/login", shared.FlashError, ExpiredMessage)
	return true
}

// Render executes template name into a buffer and writes it with status.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	var (
		token string
		flash *shared.FlashMessage
	)
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		var err error
		if token, err = rd.csrf.EnsureToken(r.Context(), sess); err != nil {
			rd.logger.Error("ensure csrf token", slog.Any("error", err))
		}
		flash = sess.PopFlash()
	}
	td := view.TemplateData{
		Title:       title,
		CSRFToken:   token,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Chrome:      Frame(session.FromContext(r.Context()), r.URL.Path),
		Data:        data,
	}
	var buf bytes.Buffer
	if err := rd.engine.Execute(&buf, name, td); err != nil {
		rd.logger.Error("render page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderLoading answers while the session identity is still being restored.
func (rd *Renderer) RenderLoading(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, "pages/loading.html", "Loading", nil, http.StatusServiceUnavailable)
}

// RenderNotAuthorized answers for signed-in users lacking a role or permission.
func (rd *Renderer) RenderNotAuthorized(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, "pages/not_authorized.html", "Not authorized", nil, http.StatusForbidden)
}

// RedirectWithFlash queues a flash message and redirects with 303.
func RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
