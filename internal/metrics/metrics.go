// Package metrics 定义服务的 Prometheus 指标
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 服务指标
type Metrics struct {
	requestDuration  *prometheus.HistogramVec
	usageEvents      *prometheus.CounterVec
	trendingRequests *prometheus.CounterVec
	scoreComputes    *prometheus.CounterVec
}

// New 在给定注册器上创建指标，nil 时使用默认注册器
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tool_catalog_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
		usageEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_catalog_usage_events_total",
				Help: "Total number of recorded usage events",
			},
			[]string{"action"},
		),
		trendingRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_catalog_trending_requests_total",
				Help: "Trending rankings served, by ranking path",
			},
			[]string{"path"},
		),
		scoreComputes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_catalog_score_computations_total",
				Help: "Trust score recomputations, by resulting grade",
			},
			[]string{"grade"},
		),
	}
}

// ObserveRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// IncUsage 记录一次使用事件
func (m *Metrics) IncUsage(action string) {
	if m == nil {
		return
	}
	m.usageEvents.WithLabelValues(action).Inc()
}

// IncTrending 记录热门榜走的路径（blended / fallback / cache）
func (m *Metrics) IncTrending(path string) {
	if m == nil {
		return
	}
	m.trendingRequests.WithLabelValues(path).Inc()
}

// IncScore 记录一次分数重算
func (m *Metrics) IncScore(grade string) {
	if m == nil {
		return
	}
	m.scoreComputes.WithLabelValues(grade).Inc()
}
