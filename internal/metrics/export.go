package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	renderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumebuilder",
			Subsystem: "export",
			Name:      "render_duration_seconds",
			Help:      "文档生成耗时分布（秒）。",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"format", "engine", "template", "outcome"},
	)

	aiAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "ai",
			Name:      "attempts_total",
			Help:      "AI 调用次数，按结果区分。",
		},
		[]string{"outcome"},
	)

	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "import",
			Name:      "requests_total",
			Help:      "简历导入次数，按错误分类区分。",
		},
		[]string{"result"},
	)
)

// Render 描述一次文档生成。Template 为空表示格式不区分模板。
type Render struct {
	Format   string
	Engine   string
	Template string
}

func (r Render) labels(err error) []string {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	engine, template := r.Engine, r.Template
	if engine == "" {
		engine = "builtin"
	}
	if template == "" {
		template = "none"
	}
	return []string{r.Format, engine, template, outcome}
}

// ObserveRender 记录一次 pdf/docx 生成。
func ObserveRender(r Render, started time.Time, err error) {
	renderDuration.WithLabelValues(r.labels(err)...).Observe(time.Since(started).Seconds())
}

// ObserveAIAttempt 记录单次 AI 调用结果：ok、overloaded 或 error。
func ObserveAIAttempt(outcome string) {
	aiAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveImport 记录导入结果。
func ObserveImport(result string) {
	importsTotal.WithLabelValues(result).Inc()
}
