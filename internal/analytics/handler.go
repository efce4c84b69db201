package analytics

import (
	"html/template"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/gridpulse/console/internal/charts"
	"github.com/gridpulse/console/internal/guard"
	"github.com/gridpulse/console/internal/layout"
)

// Ranges offered by the range picker.
var Ranges = []string{"24h", "7d", "30d", "90d"}

// DefaultRange applies when the query is missing or unknown.
const DefaultRange = "7d"

// Page is the analytics view model.
type Page struct {
	Range        string
	Ranges       []string
	Metrics      Dataset
	WeeklyChart  template.HTML
	TrafficChart template.HTML
	DeviceChart  template.HTML
}

// Handler serves the analytics page.
type Handler struct {
	logger *slog.Logger
	pages  *layout.Renderer
	guard  *guard.Guard
}

// NewHandler constructs the analytics handler.
func NewHandler(logger *slog.Logger, pages *layout.Renderer, g *guard.Guard) *Handler {
	return &Handler{logger: logger, pages: pages, guard: g}
}

// MountRoutes registers the analytics route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(guard.Analytics)).Get("/analytics", h.show)
}

// ParseRange normalises the range query value.
func ParseRange(raw string) string {
	if slices.Contains(Ranges, raw) {
		return raw
	}
	return DefaultRange
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	data := Sample()
	page := Page{
		Range:   ParseRange(r.URL.Query().Get("range")),
		Ranges:  Ranges,
		Metrics: data,
	}

	weekly := make([]charts.Point, 0, len(data.Weekly))
	for _, d := range data.Weekly {
		weekly = append(weekly, charts.Point{Label: d.Day, Value: float64(d.Users)})
	}
	var err error
	if page.WeeklyChart, err = charts.Bars(weekly, charts.BarOpts{Style: charts.Style{Title: "Weekly Users"}, Color: "#3b82f6"}); err != nil {
		h.logger.Error("render weekly chart", slog.Any("error", err))
	}
	if page.TrafficChart, err = charts.Donut(sharePoints(data.Traffic), charts.DonutOpts{Style: charts.Style{Title: "Traffic Sources"}}); err != nil {
		h.logger.Error("render traffic chart", slog.Any("error", err))
	}
	if page.DeviceChart, err = charts.Donut(sharePoints(data.Devices), charts.DonutOpts{Style: charts.Style{Title: "Devices"}}); err != nil {
		h.logger.Error("render device chart", slog.Any("error", err))
	}
	h.pages.Render(w, r, "pages/analytics.html", "Analytics", page, http.StatusOK)
}

func sharePoints(shares []Share) []charts.Point {
	out := make([]charts.Point, 0, len(shares))
	for _, s := range shares {
		out = append(out, charts.Point{Label: s.Name, Value: s.Percent, Color: s.Color})
	}
	return out
}
