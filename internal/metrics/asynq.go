package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskResultTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "后台任务处理次数，result 为 ok、retry 或 dropped。",
		},
		[]string{"task_type", "queue", "result"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumebuilder",
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "后台任务耗时（秒），导出任务包含浏览器启动。",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"task_type"},
	)

	taskInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "resumebuilder",
			Subsystem: "worker",
			Name:      "tasks_in_progress",
			Help:      "正在处理的后台任务数。",
		},
		[]string{"task_type"},
	)
)

// AsynqMetricsMiddleware 记录任务结果、队列与耗时。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			queue, ok := asynq.GetQueueName(ctx)
			if !ok {
				queue = "unknown"
			}

			taskInProgress.WithLabelValues(taskType).Inc()
			defer taskInProgress.WithLabelValues(taskType).Dec()

			started := time.Now()
			err := next.ProcessTask(ctx, task)
			taskDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
			taskResultTotal.WithLabelValues(taskType, queue, taskResult(err)).Inc()
			return err
		})
	}
}

// taskResult 区分会被重试的失败与 SkipRetry 丢弃的任务。
func taskResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, asynq.SkipRetry):
		return "dropped"
	default:
		return "retry"
	}
}
