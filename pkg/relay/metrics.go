package relay

import (
	"log"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RequestMetrics 中转服务的 Prometheus 指标
//
// 除 http_requests_total{method,route} 外，还注册了 Go 运行时与进程指标。
// 请求计数只统计 Accept 头包含 text/html 的请求（浏览器页面访问）。
type RequestMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// NewRequestMetrics 创建独立的指标注册表
func NewRequestMetrics() *RequestMetrics {
	m := &RequestMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware 计数中间件
func (m *RequestMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Accept"), "text/html") {
			m.requests.WithLabelValues(r.Method, r.URL.Path).Inc()
		}
		next.ServeHTTP(w, r)
	})
}

// Handler 返回 /metrics 处理器
func (m *RequestMetrics) Handler(logger *log.Logger) http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog: logger,
		Registry: m.registry,
	})
}
