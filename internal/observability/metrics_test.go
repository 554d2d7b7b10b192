package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsRegistererExposesCustomCollectors(t *testing.T) {
	metrics := NewMetrics()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "scheduler_custom_total", Help: "custom"})
	metrics.Registerer().MustRegister(counter)
	counter.Inc()

	body := scrape(t, metrics)
	assert.Contains(t, body, `scheduler_custom_total 1`)
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/deliveries")

	req := httptest.NewRequest(http.MethodGet, "/deliveries", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `scheduler_http_requests_total{code="418",route="/deliveries"} 1`)
	assert.Contains(t, body, `scheduler_http_request_duration_seconds_bucket{route="/deliveries"`)
}

func TestMetricsObserveAPICallAndDocument(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveAPICall("list", nil, 20*time.Millisecond)
	metrics.ObserveAPICall("create", errors.New("boom"), time.Millisecond)
	metrics.ObserveDocument("manifest", nil)

	body := scrape(t, metrics)
	assert.Contains(t, body, `scheduler_delivery_api_calls_total{operation="list",outcome="ok"} 1`)
	assert.Contains(t, body, `scheduler_delivery_api_calls_total{operation="create",outcome="error"} 1`)
	assert.Contains(t, body, `scheduler_documents_rendered_total{kind="manifest",outcome="ok"} 1`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveAPICall("list", nil, time.Second)
	metrics.ObserveDocument("manifest", nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, metrics.Middleware(next))

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "Service Unavailable"))
}
