package users

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/guard"
	"github.com/gridpulse/console/internal/layout"
)

const requestTimeout = 10 * time.Second

// Backend looks up consumers by number.
type Backend interface {
	ByNumber(ctx context.Context, number string) (gateway.Consumer, error)
}

// Page is the users view model.
type Page struct {
	Number string
	Error  string
	Result *Result
}

// Handler serves the consumer lookup page.
type Handler struct {
	logger  *slog.Logger
	backend Backend
	pages   *layout.Renderer
	guard   *guard.Guard
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, backend Backend, pages *layout.Renderer, g *guard.Guard) *Handler {
	return &Handler{logger: logger, backend: backend, pages: pages, guard: g}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(guard.Users)).Get("/users", h.lookup)
}

// lookup issues exactly one backend call per submitted number. Any failure
// collapses into the same not-found message.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	page := Page{Number: strings.TrimSpace(r.URL.Query().Get("number"))}
	if page.Number == "" {
		h.pages.Render(w, r, "pages/users.html", "User Search", page, http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	consumer, err := h.backend.ByNumber(ctx, page.Number)
	if h.pages.Expired(w, r, err) {
		return
	}
	if err != nil {
		h.logger.Info("consumer lookup failed", slog.String("number", page.Number), slog.Any("error", err))
		page.Error = NotFoundMessage
		h.pages.Render(w, r, "pages/users.html", "User Search", page, http.StatusNotFound)
		return
	}
	result := buildResult(consumer)
	page.Result = &result
	h.pages.Render(w, r, "pages/users.html", "User Search", page, http.StatusOK)
}
