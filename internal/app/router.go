package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gridpulse/console/internal/admin"
	"github.com/gridpulse/console/internal/analytics"
	"github.com/gridpulse/console/internal/auth"
	"github.com/gridpulse/console/internal/dashboard"
	"github.com/gridpulse/console/internal/observability"
	"github.com/gridpulse/console/internal/session"
	"github.com/gridpulse/console/internal/shared"
	"github.com/gridpulse/console/internal/users"
	"github.com/gridpulse/console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	SessionStore     *session.Store
	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	UsersHandler     *users.Handler
	AnalyticsHandler *analytics.Handler
	AdminHandler     *admin.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		// Assets skip sessions, CSRF and rate limiting.
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			SessionStore:   params.SessionStore,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		params.AuthHandler.MountRoutes(r)
		params.DashboardHandler.MountRoutes(r)
		params.UsersHandler.MountRoutes(r)
		params.AnalyticsHandler.MountRoutes(r)
		params.AdminHandler.MountRoutes(r)
	})

	// Everything else, including "/", lands on the sign-in page.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
