package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrorCodeKey 是 gin.Context 中保存错误类别的键，由 API 错误响应写入。
const ErrorCodeKey = "metrics.errorCode"

// unmatchedRoute 汇总所有未命中路由的请求，避免原始路径撑爆标签基数。
const unmatchedRoute = "unmatched"

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumebuilder",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "按路由模板统计的请求耗时（秒）。",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60},
		},
		[]string{"route", "status_class"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "请求总数，按方法、路由模板与状态码段区分。",
		},
		[]string{"method", "route", "status_class"},
	)

	errorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "错误响应总数，按错误类别区分。",
		},
		[]string{"route", "code"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resumebuilder",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "正在处理的请求数。",
		},
	)
)

// GinMiddleware 采集请求耗时、状态码段与错误类别。
func GinMiddleware() gin.HandlerFunc {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, errorTotal, requestsInFlight)
	})

	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		route := routeLabel(c.FullPath())
		class := statusClass(c.Writer.Status())
		requestDuration.WithLabelValues(route, class).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(c.Request.Method, route, class).Inc()
		if code := c.GetString(ErrorCodeKey); code != "" {
			errorTotal.WithLabelValues(route, code).Inc()
		}
	}
}

func routeLabel(fullPath string) string {
	if fullPath == "" {
		return unmatchedRoute
	}
	return fullPath
}

// statusClass 把 404 归为 "4xx"。
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
