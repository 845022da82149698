package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
)

// PrefixRemover 删除某前缀下的全部对象。
type PrefixRemover interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// ResumeHandler 负责简历本身的增删改查。
type ResumeHandler struct {
	store   *store.Store
	objects PrefixRemover
}

// ResumeOption 调整 ResumeHandler。
type ResumeOption func(*ResumeHandler)

// WithExportCleanup 删除简历时一并删除其导出文件。
func WithExportCleanup(objects PrefixRemover) ResumeOption {
	return func(h *ResumeHandler) { h.objects = objects }
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(s *store.Store, opts ...ResumeOption) *ResumeHandler {
	h := &ResumeHandler{store: s}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type resumeTitleRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// ListResumes 返回当前用户的简历，最近更新的在前。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	items, err := h.store.ListResumes(c.Request.Context(), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateResume 创建一份空简历。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req resumeTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	created, err := h.store.CreateResume(c.Request.Context(), userID, req.Title)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetResume 返回简历及全部子记录。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	g, err := h.store.LoadGraph(c.Request.Context(), userID, resumeID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// RenameResume 只修改标题。
func (h *ResumeHandler) RenameResume(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	var req resumeTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailBinding(c, err)
		return
	}
	updated, err := h.store.RenameResume(c.Request.Context(), userID, resumeID, req.Title)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteResume 删除简历及其子记录。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, resumeID, ok := resumeScope(c)
	if !ok {
		return
	}
	if err := h.store.DeleteResume(c.Request.Context(), userID, resumeID); err != nil {
		Fail(c, err)
		return
	}
	if h.objects != nil {
		prefix := storage.ExportPrefix(userID, resumeID)
		if err := h.objects.DeletePrefix(c.Request.Context(), prefix); err != nil {
			middleware.LoggerFromContext(c).Warn("delete export objects failed", slog.String("prefix", prefix), slog.Any("error", err))
		}
	}
	c.Status(http.StatusNoContent)
}
