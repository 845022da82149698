package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
)

// TaskEnqueuer 由 *asynq.Client 实现。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Presigner 为导出文件生成临时下载链接。
type Presigner interface {
	PresignedURL(ctx context.Context, objectKey string, ttl time.Duration, filename string) (string, error)
}

// ExportHandler 处理同步下载与异步导出。
type ExportHandler struct {
	store      *store.Store
	exporter   *export.Service
	queue      TaskEnqueuer
	presigner  Presigner
	presignTTL time.Duration
}

// NewExportHandler 构造 ExportHandler。
func NewExportHandler(s *store.Store, exporter *export.Service, queue TaskEnqueuer, presigner Presigner, presignTTL time.Duration) *ExportHandler {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &ExportHandler{
		store:      s,
		exporter:   exporter,
		queue:      queue,
		presigner:  presigner,
		presignTTL: presignTTL,
	}
}

// DownloadPDF 同步渲染 PDF 并作为附件返回。
func (h *ExportHandler) DownloadPDF(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	doc, err := h.exporter.PDF(c.Request.Context(), userID, resumeID, c.Query("templateName"))
	if err != nil {
		Fail(c, err)
		return
	}
	writeDocument(c, doc)
}

// DownloadDOCX 同步生成 DOCX 并作为附件返回。
func (h *ExportHandler) DownloadDOCX(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	doc, err := h.exporter.DOCX(c.Request.Context(), userID, resumeID)
	if err != nil {
		Fail(c, err)
		return
	}
	writeDocument(c, doc)
}

func writeDocument(c *gin.Context, doc *export.Document) {
	c.Header("Content-Disposition", export.ContentDisposition(doc.Filename))
	c.Header("Content-Length", strconv.Itoa(len(doc.Data)))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

type enqueueExportRequest struct {
	TemplateName string `json:"templateName" binding:"max=64"`
}

// EnqueueExport 投递异步 PDF 导出任务。
func (h *ExportHandler) EnqueueExport(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	var req enqueueExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			FailBinding(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetResume(ctx, userID, resumeID); err != nil {
		Fail(c, err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewExportPDFTask(tasks.ExportPDFPayload{
		UserID:        userID,
		ResumeID:      resumeID,
		TemplateName:  req.TemplateName,
		CorrelationID: correlationID,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	if err := h.store.SetExportState(ctx, resumeID, database.ExportStatusPending, ""); err != nil {
		Fail(c, err)
		return
	}
	info, err := h.queue.EnqueueContext(ctx, task)
	if err != nil {
		_ = h.store.SetExportState(ctx, resumeID, database.ExportStatusFailed, "")
		Fail(c, errcode.Wrap(errcode.Unavailable, "export queue is unavailable", err))
		return
	}

	middleware.LoggerFromContext(c).Info("export enqueued",
		slog.Uint64("resume_id", uint64(resumeID)),
		slog.String("task_id", info.ID),
	)
	c.JSON(http.StatusAccepted, gin.H{
		"status":        database.ExportStatusPending,
		"taskId":        info.ID,
		"correlationId": correlationID,
	})
}

// LatestExport 返回最近一次异步导出的预签名链接。
func (h *ExportHandler) LatestExport(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	r, err := h.store.GetResume(ctx, userID, resumeID)
	if err != nil {
		Fail(c, err)
		return
	}
	key, status, err := h.store.ExportObjectKey(ctx, userID, resumeID)
	if err != nil {
		Fail(c, err)
		return
	}
	if key == "" {
		switch status {
		case "":
			Fail(c, errcode.New(errcode.NotFound, "no export available"))
			return
		case database.ExportStatusExpired:
			Fail(c, errcode.New(errcode.NotFound, "export expired"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
		return
	}
	url, err := h.presigner.PresignedURL(ctx, key, h.presignTTL, export.Filename(r.Title, ".pdf"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"url":       url,
		"expiresIn": int(h.presignTTL.Seconds()),
	})
}
