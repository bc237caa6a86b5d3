package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/provider/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/provider/1", "/provider/2", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/provider/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/ok", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpRequestsInFlight))
}

func TestAuthCounters(t *testing.T) {
	m := New()

	m.LoginResult(LoginSuccess)
	m.LoginResult(LoginInvalid)
	m.LoginResult(LoginInvalid)
	m.RegisterResult(RegisterConflict)
	m.LockoutOpened()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues(LoginSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues(LoginInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues(RegisterConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lockoutsOpened))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.LoginResult(LoginSuccess)
		m.RegisterResult(RegisterSuccess)
		m.LockoutOpened()
	})

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.LockoutOpened()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "auth_lockouts_total 1"))
}
