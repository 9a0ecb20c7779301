package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"bloodlink/internal/platform/metrics"
)

func TestInstrument(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(Instrument(m))
	r.Get("/admin/inventory/{bankID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/admin/inventory/a", "/admin/inventory/b", "/healthz", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, promtest.ToFloat64(m.Requests.WithLabelValues("/admin/inventory/{bankID}", "GET", "418")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Requests.WithLabelValues("/healthz", "GET", "200")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Requests.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.InFlight))
}

func TestInstrumentNilMetrics(t *testing.T) {
	h := Instrument(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
