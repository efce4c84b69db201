package dashboard

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/gridpulse/console/internal/charts"
	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/guard"
	"github.com/gridpulse/console/internal/layout"
	"github.com/gridpulse/console/internal/shared"
)

const requestTimeout = 10 * time.Second

// Backend provides the live dashboard figures.
type Backend interface {
	Stats(ctx context.Context) (gateway.DashboardStats, error)
	Charts(ctx context.Context) (gateway.DashboardCharts, error)
}

// StatCard is one headline counter.
type StatCard struct {
	Title string
	Value int64
}

// Page is the dashboard view model.
type Page struct {
	Error        string
	Cards        []StatCard
	Segments     []gateway.SegmentShare
	Phase        *gateway.PhaseSplit
	RegionChart  template.HTML
	TensionChart template.HTML
	ReadingChart template.HTML
	SegmentChart template.HTML
	PhaseChart   template.HTML
	Tariffs      []CountRow
	Activities   []CountRow
	Agencies     []CountRow
	Alerts       []string
}

// Handler serves the home dashboard.
type Handler struct {
	logger  *slog.Logger
	backend Backend
	pages   *layout.Renderer
	guard   *guard.Guard
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, backend Backend, pages *layout.Renderer, g *guard.Guard) *Handler {
	return &Handler{logger: logger, backend: backend, pages: pages, guard: g}
}

// MountRoutes registers the dashboard route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(guard.Dashboard)).Get("/dashboard", h.show)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	page := Page{
		Tariffs:    tariffRows,
		Activities: activityRows,
		Agencies:   agencyRows,
		Alerts:     recentAlerts,
	}
	stats, series, err := h.load(ctx)
	if h.pages.Expired(w, r, err) {
		return
	}
	if err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		page.Error = shared.UserSafeMessage(err)
		h.pages.Render(w, r, "pages/dashboard.html", "Dashboard", page, http.StatusBadGateway)
		return
	}

	page.Cards = []StatCard{
		{"Total Users", stats.TotalUsers},
		{"Active Users", stats.ActiveUsers},
		{"Inactive Users", stats.InactiveUsers},
		{"Alert Cases", stats.AlertCases},
	}
	page.Segments = series.Segments
	page.Phase = &series.Phase
	h.drawCharts(&page, series)
	h.pages.Render(w, r, "pages/dashboard.html", "Dashboard", page, http.StatusOK)
}

// load fetches stats and charts together; either failing discards both.
func (h *Handler) load(ctx context.Context) (gateway.DashboardStats, gateway.DashboardCharts, error) {
	var (
		stats  gateway.DashboardStats
		series gateway.DashboardCharts
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = h.backend.Stats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		series, err = h.backend.Charts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return gateway.DashboardStats{}, gateway.DashboardCharts{}, err
	}
	return stats, series, nil
}

func (h *Handler) drawCharts(page *Page, series gateway.DashboardCharts) {
	segments := make([]charts.Point, 0, len(series.Segments))
	for _, s := range series.Segments {
		segments = append(segments, charts.Point{Label: s.Name, Value: s.Percentage, Color: s.Color})
	}
	phase := []charts.Point{
		{Label: "Single-Line", Value: series.Phase.SinglePhase, Color: "#facc15"},
		{Label: "Multi-Line", Value: series.Phase.ThreePhase, Color: "#f97316"},
	}

	page.RegionChart = h.chart("region", func() (template.HTML, error) {
		return charts.Bars(points(series.Regions), charts.BarOpts{Style: charts.Style{Title: "Users by Region"}})
	})
	page.TensionChart = h.chart("tension", func() (template.HTML, error) {
		return charts.Donut(points(series.Tension), charts.DonutOpts{Style: charts.Style{Title: "Users by Tension Type"}})
	})
	page.ReadingChart = h.chart("reading methods", func() (template.HTML, error) {
		return charts.Bars(points(series.ReadingMethods), charts.BarOpts{Style: charts.Style{Title: "Reading Methods", Width: 360}})
	})
	page.SegmentChart = h.chart("segments", func() (template.HTML, error) {
		return charts.Donut(segments, charts.DonutOpts{Style: charts.Style{Title: "Customer Segments"}})
	})
	page.PhaseChart = h.chart("phase", func() (template.HTML, error) {
		return charts.Donut(phase, charts.DonutOpts{Style: charts.Style{Title: "Users by Connection Type"}, Thickness: 0.3})
	})
}

// chart renders one chart; a chart without data is simply left out.
func (h *Handler) chart(name string, draw func() (template.HTML, error)) template.HTML {
	html, err := draw()
	if err != nil {
		h.logger.Debug("skip chart", slog.String("chart", name), slog.Any("error", err))
		return ""
	}
	return html
}

func points(items []gateway.ChartItem) []charts.Point {
	out := make([]charts.Point, 0, len(items))
	for _, item := range items {
		out = append(out, charts.Point{Label: item.Name, Value: item.Value, Color: item.Color})
	}
	return out
}
