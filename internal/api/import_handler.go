package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/importer"
)

// ImportHandler 把上传的简历文件解析为结构化草稿。
type ImportHandler struct {
	importer *importer.Importer
	scanner  Scanner
	maxBytes int64
}

// NewImportHandler 构造 ImportHandler。
func NewImportHandler(im *importer.Importer, scanner Scanner, maxBytes int64) *ImportHandler {
	return &ImportHandler{importer: im, scanner: scanner, maxBytes: maxBytes}
}

// Import 接收 multipart 字段 file，只接受 PDF 与 DOCX，返回 AI 给出的 JSON。
func (h *ImportHandler) Import(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	data, declared, err := readFormFile(c, "file", h.maxBytes)
	if err != nil {
		Fail(c, err)
		return
	}

	mediaType := importer.DetectMediaType(declared, data)
	if !h.importer.Supports(mediaType) {
		Fail(c, errcode.New(errcode.UnsupportedMediaType, "only PDF and DOCX files can be imported"))
		return
	}
	ctx := c.Request.Context()
	if err := h.scanner.Scan(ctx, data); err != nil {
		Fail(c, err)
		return
	}

	draft, err := h.importer.Import(ctx, mediaType, data)
	if err != nil {
		Fail(c, err)
		return
	}
	middleware.LoggerFromContext(c).Info("resume imported", slog.String("media_type", mediaType), slog.Int("size", len(data)))
	c.Data(http.StatusOK, "application/json; charset=utf-8", draft)
}
