package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"resumeBuilder/internal/storage"
)

// ExpiredObjectStore 列出并删除过期对象。
type ExpiredObjectStore interface {
	ListOlderThan(ctx context.Context, prefix string, cutoff time.Time) ([]storage.ObjectMeta, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// ExportExpirer 在对象删除后清除简历上的导出记录。
type ExportExpirer interface {
	ExpireExport(ctx context.Context, objectKey string) (int64, error)
}

// CleanupTaskHandler 定期删除超过保留期的导出文件。
type CleanupTaskHandler struct {
	store     ExpiredObjectStore
	exports   ExportExpirer
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewCleanupTaskHandler(store ExpiredObjectStore, exports ExportExpirer, retention time.Duration, logger *slog.Logger) *CleanupTaskHandler {
	return &CleanupTaskHandler{store: store, exports: exports, retention: retention, now: time.Now, logger: logger}
}

// ProcessTask 实现 asynq.Handler。单个对象删除失败只记录日志。
func (h *CleanupTaskHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	cutoff := h.now().Add(-h.retention)
	objects, err := h.store.ListOlderThan(ctx, storage.ExportsPrefix, cutoff)
	if err != nil {
		return err
	}

	removed, detached := 0, int64(0)
	for _, obj := range objects {
		if err := h.store.DeleteObject(ctx, obj.Key); err != nil {
			h.logger.Warn("delete expired export failed", slog.String("object_key", obj.Key), slog.Any("error", err))
			continue
		}
		removed++
		n, err := h.exports.ExpireExport(ctx, obj.Key)
		if err != nil {
			h.logger.Warn("expire export record failed", slog.String("object_key", obj.Key), slog.Any("error", err))
			continue
		}
		detached += n
	}
	h.logger.Info("expired exports cleaned",
		slog.Int("found", len(objects)),
		slog.Int("removed", removed),
		slog.Int64("resumes_detached", detached),
		slog.Time("cutoff", cutoff))
	return nil
}
