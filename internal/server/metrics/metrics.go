// Package metrics provides Prometheus HTTP metrics middleware and the
// authentication counters of the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes reported through LoginResult.
const (
	LoginSuccess     = "success"
	LoginInvalid     = "invalid_credentials"
	LoginLockedOut   = "locked_out"
	LoginBadRequest  = "validation"
	RegisterSuccess  = "success"
	RegisterConflict = "conflict"
	RegisterInvalid  = "validation"
)

// Metrics owns a registry and every collector the server exports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	loginAttempts  *prometheus.CounterVec
	registrations  *prometheus.CounterVec
	lockoutsOpened prometheus.Counter
}

// New creates a registry with the process and Go runtime collectors plus
// the server's own metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		loginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"result"},
		),
		registrations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_registrations_total",
				Help: "Registration attempts by outcome",
			},
			[]string{"result"},
		),
		lockoutsOpened: f.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_lockouts_total",
				Help: "Number of lockout windows opened by failed logins",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count, latency and in-flight requests.
// The path label is the chi route pattern when one matched.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpRequestsInFlight.Inc()
		defer m.httpRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) LoginResult(result string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) RegisterResult(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

// LockoutOpened counts a failed login that started a lockout window.
func (m *Metrics) LockoutOpened() {
	if m == nil {
		return
	}
	m.lockoutsOpened.Inc()
}
