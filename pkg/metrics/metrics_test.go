package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveLoad("knn", "seed", 10*time.Millisecond)
	m.ObserveFallback("knn", "invalid_input")
	m.ObserveFallback("knn", "invalid_input")
	m.ObserveHTTP("/api/matches", "GET", 200, time.Millisecond)

	if got := testutil.ToFloat64(m.BackendLoads.WithLabelValues("knn", "seed")); got != 1 {
		t.Errorf("backend loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Fallbacks.WithLabelValues("knn", "invalid_input")); got != 2 {
		t.Errorf("fallbacks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/matches", "GET", "200")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveLoad("knn", "seed", time.Second)
	m.ObserveFallback("knn", "internal")
	m.ObserveScore("knn", "find", time.Second, 3)
	m.ObserveHTTP("/", "GET", 500, time.Second)
}
