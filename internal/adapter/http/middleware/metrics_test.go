package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	m := newTestMetrics(t)
	mw := NewMetricsMiddleware(m)

	r := chi.NewRouter()
	r.Use(mw.Wrap)
	r.Get("/api/v1/marketplace/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/marketplace/listings/lst-1", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	counter := m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/marketplace/listings/{id}", strconv.Itoa(http.StatusOK))
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("expected counter to be 1, got %v", got)
	}
}

func TestMetricsMiddlewareFallsBackToRawPath(t *testing.T) {
	m := newTestMetrics(t)
	mw := NewMetricsMiddleware(m)

	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(rr, req)

	if !handlerCalled {
		t.Fatalf("next handler was not invoked")
	}

	counter := m.HTTPRequests.WithLabelValues(http.MethodPost, "/health", strconv.Itoa(http.StatusTeapot))
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("expected counter to be 1, got %v", got)
	}
}
