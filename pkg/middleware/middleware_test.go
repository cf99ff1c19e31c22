package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func TestPrometheus_RecordsRequests(t *testing.T) {
	registry := prometheus.NewRegistry()
	handler := Prometheus(WithRegistry(registry))(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRec := httptest.NewRecorder()
	promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(metricsRec, metricsReq)

	body := metricsRec.Body.String()
	if !strings.Contains(body, `cityflow_ops_requests_total{path="/healthz",status="200"} 3`) {
		t.Errorf("expected request counter in metrics output:\n%s", body)
	}
	if !strings.Contains(body, "cityflow_ops_request_duration_seconds") {
		t.Errorf("expected duration histogram in metrics output")
	}
}

func TestPrometheus_LabelsErrorStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	handler := Prometheus(WithRegistry(registry), WithSubsystem("test"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

	req := httptest.NewRequest(http.MethodGet, "/statusz", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	metricsRec := httptest.NewRecorder()
	promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(metricsRec,
		httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(metricsRec.Body.String(), `cityflow_test_requests_total{path="/statusz",status="500"} 1`) {
		t.Errorf("expected 500-labeled counter:\n%s", metricsRec.Body.String())
	}
}

func TestOpenTelemetry_PassesThrough(t *testing.T) {
	handler := OpenTelemetry()(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("middleware altered the response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestOpenTelemetry_FilterSkipsTracing(t *testing.T) {
	called := false
	handler := OpenTelemetry(
		WithTracerName("test"),
		WithRequestFilter(func(r *http.Request) bool {
			called = true
			return false
		}),
	)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !called {
		t.Error("expected filter to be consulted")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("unexpected status %d", rec.Code)
	}
}
