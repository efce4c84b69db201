package users_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/testing/pagetest"
	"github.com/gridpulse/console/internal/users"
)

type stubBackend struct {
	calls atomic.Int32
	err   error
}

func (s *stubBackend) ByNumber(ctx context.Context, number string) (gateway.Consumer, error) {
	s.calls.Add(1)
	if s.err != nil {
		return gateway.Consumer{}, s.err
	}
	return gateway.Consumer{
		Name:           "User " + number,
		Number:         number,
		Email:          "user" + number + "@example.com",
		Status:         "active",
		Region:         "North",
		Segment:        "Residential",
		Phase:          "1-phase",
		CreatedAt:      "2024-01-01",
		UsageHistory:   []gateway.UsagePoint{{Month: "Jan", Usage: 150}, {Month: "Feb", Usage: 250}},
		PaymentHistory: []gateway.PaymentPoint{{Month: "Jan", Paid: 1}, {Month: "Feb", Paid: 0}},
		AlertHistory:   []gateway.AlertPoint{{Month: "Jan", Alerts: 2}, {Month: "Feb", Alerts: 1}},
		RecentActivity: []string{"2024-07-01: Paid bill"},
	}, nil
}

func serve(t *testing.T, backend *stubBackend, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := pagetest.New(t)
	r := chi.NewRouter()
	users.NewHandler(h.Logger, backend, h.Pages, h.Guard).MountRoutes(r)
	req, _ := h.Request(t, http.MethodGet, target, pagetest.SignedIn(nil, []string{"user_dashboard"}), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestEmptyNumberSkipsBackend(t *testing.T) {
	backend := &stubBackend{}
	rec := serve(t, backend, "/users")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(0), backend.calls.Load())
	assert.Contains(t, rec.Body.String(), `name="number"`)
}

func TestLookupRendersProfileAndStats(t *testing.T) {
	backend := &stubBackend{}
	rec := serve(t, backend, "/users?number=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), backend.calls.Load())
	body := rec.Body.String()
	assert.Contains(t, body, "user3@example.com")
	assert.Contains(t, body, "Usage Over Time")
	assert.Contains(t, body, "2024-07-01: Paid bill")
	assert.Contains(t, body, "400")
}

func TestAnyFailureCollapsesToNotFound(t *testing.T) {
	for _, err := range []error{
		&gateway.Error{Status: http.StatusNotFound, Message: "User not found"},
		&gateway.Error{Status: http.StatusInternalServerError, Message: "database locked"},
		&gateway.Error{Message: "Unable to connect to the server. Please check your backend is running."},
	} {
		backend := &stubBackend{err: err}
		rec := serve(t, backend, "/users?number=99")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, int32(1), backend.calls.Load())
		body := rec.Body.String()
		assert.Contains(t, body, users.NotFoundMessage)
		assert.NotContains(t, body, "database locked")
		assert.NotContains(t, body, "Usage Over Time")
	}
}
