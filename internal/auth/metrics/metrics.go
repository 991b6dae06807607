// Package metrics holds the Prometheus collectors for the identity service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh rotation outcomes.
const (
	RefreshRotated = "rotated"
	RefreshUnknown = "unknown"
	RefreshReused  = "reused"
	RefreshExpired = "expired"
	RefreshRace    = "race"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing,
// so services can be built in tests without a registry.
type Metrics struct {
	registry *prometheus.Registry

	Logins         *prometheus.CounterVec
	Refreshes      *prometheus.CounterVec
	Registrations  *prometheus.CounterVec
	TokensConsumed *prometheus.CounterVec
	MailDispatch   *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them, plus the Go and process
// collectors, on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docuchat_auth_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docuchat_auth_refresh_total",
				Help: "Refresh token rotations by result",
			},
			[]string{"result"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docuchat_auth_registrations_total",
				Help: "Completed registrations by mode (tenant, invite)",
			},
			[]string{"mode"},
		),
		TokensConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docuchat_auth_tokens_consumed_total",
				Help: "One-time token consumption attempts",
			},
			[]string{"purpose", "result"},
		),
		MailDispatch: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docuchat_mail_dispatch_total",
				Help: "Outgoing mail handed to the sender",
			},
			[]string{"result"},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docuchat_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docuchat_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Logins,
		m.Refreshes,
		m.Registrations,
		m.TokensConsumed,
		m.MailDispatch,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

func (m *Metrics) Login(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Refresh(result string) {
	if m != nil {
		m.Refreshes.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Registration(mode string) {
	if m != nil {
		m.Registrations.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) TokenConsumed(purpose, result string) {
	if m != nil {
		m.TokensConsumed.WithLabelValues(purpose, result).Inc()
	}
}

func (m *Metrics) Mail(result string) {
	if m != nil {
		m.MailDispatch.WithLabelValues(result).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency under route, the mux
// pattern the handler was registered with.
func (m *Metrics) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
