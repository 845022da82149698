package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hibiken/asynq"

	"resumeBuilder/internal/database"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/tasks"
)

// PDFExporter 生成 PDF 文档。
type PDFExporter interface {
	PDF(ctx context.Context, userID, resumeID uint, templateName string) (*export.Document, error)
}

// ObjectUploader 保存生成的文件。
type ObjectUploader interface {
	Upload(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) (string, error)
}

// ExportStateWriter 记录导出状态。
type ExportStateWriter interface {
	SetExportState(ctx context.Context, resumeID uint, status, objectKey string) error
}

// ExportTaskHandler 消费异步 PDF 导出任务。
type ExportTaskHandler struct {
	exporter PDFExporter
	uploader ObjectUploader
	state    ExportStateWriter
	notifier Notifier
	logger   *slog.Logger
}

// NewExportTaskHandler 创建任务处理器。
func NewExportTaskHandler(exporter PDFExporter, uploader ObjectUploader, state ExportStateWriter, notifier Notifier, logger *slog.Logger) *ExportTaskHandler {
	return &ExportTaskHandler{
		exporter: exporter,
		uploader: uploader,
		state:    state,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	payload, err := tasks.ParseExportPDFPayload(t)
	if err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("user_id", uint64(payload.UserID)),
		slog.Uint64("resume_id", uint64(payload.ResumeID)),
		slog.String("template", payload.TemplateName),
	)
	log.Info("starting pdf export task")

	defer func() {
		if retErr == nil || !isFinalAsynqAttempt(ctx, retErr) {
			return
		}
		if err := h.state.SetExportState(ctx, payload.ResumeID, database.ExportStatusFailed, ""); err != nil && !errcode.Is(err, errcode.NotFound) {
			log.Error("mark export failed", slog.Any("error", err))
		}
		h.notify(ctx, log, payload, ExportNotifyMessage{
			Status:       NotifyError,
			ErrorCode:    errcode.Notify(retErr),
			ErrorMessage: errcode.PublicMessage(retErr),
		})
	}()

	if err := h.state.SetExportState(ctx, payload.ResumeID, database.ExportStatusProcessing, ""); err != nil {
		if errcode.Is(err, errcode.NotFound) {
			log.Warn("resume not found, skipping task")
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	doc, err := h.exporter.PDF(ctx, payload.UserID, payload.ResumeID, payload.TemplateName)
	if err != nil {
		log.Error("render pdf failed", slog.Any("error", err))
		if errcode.Is(err, errcode.NotFound) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	objectKey := storage.ExportKey(payload.UserID, payload.ResumeID)
	if _, err := h.uploader.Upload(ctx, objectKey, bytes.NewReader(doc.Data), int64(len(doc.Data)), doc.ContentType); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	if err := h.state.SetExportState(ctx, payload.ResumeID, database.ExportStatusCompleted, objectKey); err != nil {
		log.Error("update export state failed", slog.Any("error", err))
		return err
	}

	h.notify(ctx, log, payload, ExportNotifyMessage{Status: NotifyCompleted, ErrorCode: errcode.OK})
	log.Info("pdf export task completed", slog.String("object_key", objectKey), slog.Int("bytes", len(doc.Data)))
	return nil
}

func (h *ExportTaskHandler) notify(ctx context.Context, log *slog.Logger, payload tasks.ExportPDFPayload, msg ExportNotifyMessage) {
	msg.ResumeID = payload.ResumeID
	msg.CorrelationID = payload.CorrelationID
	if err := h.notifier.Notify(ctx, payload.UserID, msg); err != nil {
		log.Error("publish export notification failed", slog.Any("error", err))
	}
}

// isFinalAsynqAttempt 判断是否不会再重试。
func isFinalAsynqAttempt(ctx context.Context, err error) bool {
	if errors.Is(err, asynq.SkipRetry) {
		return true
	}
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return true
	}
	return retryCount >= maxRetry
}
