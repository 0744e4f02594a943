// Package metrics 提供打分引擎与 HTTP 层的 Prometheus 指标。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 聚合全部指标；通过 New(reg) 注册到指定 Registerer，便于测试隔离。
// nil *Metrics 的所有方法都是空操作。
type Metrics struct {
	BackendLoads    *prometheus.CounterVec   // 后端加载次数，按 backend / source
	BackendLoadTime *prometheus.HistogramVec // 后端加载耗时
	Fallbacks       *prometheus.CounterVec   // 降级次数，按 backend / fault
	ScoreDuration   *prometheus.HistogramVec // 单次打分耗时，按 backend / op
	MatchesReturned *prometheus.HistogramVec // 单次返回条数
	HTTPRequests    *prometheus.CounterVec   // HTTP 请求数，按 route / method / status
	HTTPDuration    *prometheus.HistogramVec // HTTP 请求耗时
}

// New 在 reg 上注册全部指标
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BackendLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutmatch_backend_loads_total",
			Help: "Total number of scoring backend loads by source",
		}, []string{"backend", "source"}),
		BackendLoadTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoutmatch_backend_load_duration_seconds",
			Help:    "Duration of scoring backend loads in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend"}),
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutmatch_fallbacks_total",
			Help: "Total number of fallback rankings served by fault",
		}, []string{"backend", "fault"}),
		ScoreDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoutmatch_score_duration_seconds",
			Help:    "Duration of scoring calls in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"backend", "op"}),
		MatchesReturned: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoutmatch_matches_returned",
			Help:    "Number of matches returned per scoring call",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		}, []string{"backend"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutmatch_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoutmatch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveLoad 记录一次后端加载
func (m *Metrics) ObserveLoad(backend, source string, d time.Duration) {
	if m == nil {
		return
	}
	m.BackendLoads.WithLabelValues(backend, source).Inc()
	m.BackendLoadTime.WithLabelValues(backend).Observe(d.Seconds())
}

// ObserveFallback 记录一次降级
func (m *Metrics) ObserveFallback(backend, fault string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(backend, fault).Inc()
}

// ObserveScore 记录一次打分调用
func (m *Metrics) ObserveScore(backend, op string, d time.Duration, n int) {
	if m == nil {
		return
	}
	m.ScoreDuration.WithLabelValues(backend, op).Observe(d.Seconds())
	m.MatchesReturned.WithLabelValues(backend).Observe(float64(n))
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
