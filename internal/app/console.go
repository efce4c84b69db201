package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/gridpulse/console/internal/admin"
	"github.com/gridpulse/console/internal/analytics"
	"github.com/gridpulse/console/internal/auth"
	"github.com/gridpulse/console/internal/dashboard"
	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/guard"
	"github.com/gridpulse/console/internal/layout"
	"github.com/gridpulse/console/internal/observability"
	"github.com/gridpulse/console/internal/session"
	"github.com/gridpulse/console/internal/shared"
	"github.com/gridpulse/console/internal/users"
	"github.com/gridpulse/console/internal/view"
)

// Deps are the external resources the console is assembled from.
type Deps struct {
	Config  *Config
	Logger  *slog.Logger
	Redis   *redis.Client
	Metrics *observability.Metrics
	// HTTPClient overrides the transport used for backend calls.
	HTTPClient *http.Client
}

// NewConsole wires every page handler against the backend gateway and
// returns the root handler.
func NewConsole(deps Deps) (http.Handler, error) {
	cfg, logger := deps.Config, deps.Logger
	if cfg == nil {
		return nil, fmt.Errorf("app: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []gateway.Option{}
	if deps.Metrics != nil {
		opts = append(opts, gateway.WithObserver(deps.Metrics))
	}
	if deps.HTTPClient != nil {
		opts = append(opts, gateway.WithHTTPClient(deps.HTTPClient))
	}
	client := gateway.NewClient(cfg.APIBaseURL, cfg.APITimeout, opts...)

	sessions := shared.NewSessionManager(deps.Redis, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	store := session.NewStore(client.Auth(), logger, cfg.RestoreWait)
	pages := layout.NewRenderer(templates, csrf, store, logger)
	pageGuard := guard.New(pages, logger)

	adminService := admin.NewService(client.Admin(), admin.NewGatewayDirectory(client))

	return NewRouter(RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessions,
		CSRFManager:      csrf,
		SessionStore:     store,
		AuthHandler:      auth.NewHandler(logger, store, client.Auth(), sessions, pages, pageGuard, cfg.LoginRateLimit),
		DashboardHandler: dashboard.NewHandler(logger, client.Dashboard(), pages, pageGuard),
		UsersHandler:     users.NewHandler(logger, client.Users(), pages, pageGuard),
		AnalyticsHandler: analytics.NewHandler(logger, pages, pageGuard),
		AdminHandler:     admin.NewHandler(logger, adminService, pages, pageGuard),
		Metrics:          deps.Metrics,
	}), nil
}
