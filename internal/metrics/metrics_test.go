package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance/internal/core"
)

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/api/transactions":           "/api/transactions",
		"/api/transactions/abc-123":   "/api/transactions/{id}",
		"/api/transactions/":          "other",
		"/api/transactions/a/b":       "other",
		"/api/summary/chart":          "/api/summary/chart",
		"/metrics":                    "/metrics",
		"/wp-admin/setup-config.php":  "other",
	}
	for path, want := range tests {
		assert.Equal(t, want, RouteLabel(path), path)
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New("api")
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, p := range []string{"/api/transactions/a", "/api/transactions/b", "/api/transactions/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("PUT", "/api/transactions/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("PUT", "/api/transactions/{id}", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInFlight))
}

type stubPublisher struct{ err error }

func (s stubPublisher) PublishTransactionEvent(context.Context, core.TransactionEvent) error {
	return s.err
}

func TestInstrumentPublisher(t *testing.T) {
	m := New("api")
	ctx := context.Background()

	ok := m.InstrumentPublisher(stubPublisher{})
	require.NoError(t, ok.PublishTransactionEvent(ctx, core.TransactionEvent{Type: core.EventCreated}))

	boom := errors.New("down")
	failing := m.InstrumentPublisher(stubPublisher{err: boom})
	assert.ErrorIs(t, failing.PublishTransactionEvent(ctx, core.TransactionEvent{Type: core.EventDeleted}), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("published", "created", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("published", "deleted", "error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("api")
	m.RateLimited.Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "finance_api_rate_limited_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New("api")
		New("api")
	})
}
