package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpulse/console/internal/gateway"
)

var _ gateway.Observer = (*Metrics)(nil)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsHandlerExposesRuntimeMetrics(t *testing.T) {
	assert.Contains(t, scrape(t, NewMetrics()), "go_goroutines")
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/dashboard")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `gridpulse_http_requests_total{code="418",route="/dashboard"} 1`)
	assert.Contains(t, body, `gridpulse_http_request_duration_seconds_bucket{route="/dashboard"`)
}

func TestObserveRequestRecordsGatewayCalls(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveRequest(http.MethodGet, "/users/number/:id", http.StatusNotFound, 20*time.Millisecond)
	metrics.ObserveRequest(http.MethodPost, "/auth/login", 0, time.Second)

	body := scrape(t, metrics)
	assert.Contains(t, body, `gridpulse_gateway_requests_total{code="404",endpoint="GET /users/number/:id"} 1`)
	assert.Contains(t, body, `gridpulse_gateway_requests_total{code="0",endpoint="POST /auth/login"} 1`)
	assert.Contains(t, body, `gridpulse_gateway_request_duration_seconds_count{endpoint="POST /auth/login"} 1`)
}

func TestNilMetricsAreInert(t *testing.T) {
	var metrics *Metrics
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, metrics.Middleware(next))
	metrics.ObserveRequest(http.MethodGet, "/x", 200, time.Millisecond)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
