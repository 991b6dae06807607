package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docuchat/docuchat/internal/auth/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	m.Refresh(metrics.RefreshRotated)
	m.Refresh(metrics.RefreshRotated)
	m.Refresh(metrics.RefreshReused)
	m.Login("success")

	require.Equal(t, 2.0, testutil.ToFloat64(m.Refreshes.WithLabelValues(metrics.RefreshRotated)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues(metrics.RefreshReused)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("success")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.Login("success")
		m.Refresh(metrics.RefreshRace)
		m.Mail("ok")
	})

	h := m.Middleware("GET /livez")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMiddlewareAndHandler(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	h := m.Middleware("POST /auth/login")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "POST /auth/login", "401")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "docuchat_http_requests_total"))
}
