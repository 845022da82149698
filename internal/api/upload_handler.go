package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/storage"
)

// ObjectUploader 由 *storage.Client 实现。
type ObjectUploader interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
}

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// UploadHandler 处理头像等图片上传。
type UploadHandler struct {
	uploader ObjectUploader
	scanner  Scanner
	maxBytes int64
}

// NewUploadHandler 构造 UploadHandler。
func NewUploadHandler(uploader ObjectUploader, scanner Scanner, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploader: uploader, scanner: scanner, maxBytes: maxBytes}
}

// UploadImage 校验类型与大小并扫描后写入对象存储，返回稳定 URL。
func (h *UploadHandler) UploadImage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	data, _, err := readFormFile(c, "file", h.maxBytes)
	if err != nil {
		Fail(c, err)
		return
	}

	contentType := mimetype.Detect(data).String()
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		Fail(c, errcode.New(errcode.UnsupportedMediaType, "only png, jpeg and webp images are accepted"))
		return
	}
	ctx := c.Request.Context()
	if err := h.scanner.Scan(ctx, data); err != nil {
		Fail(c, err)
		return
	}

	key := storage.UploadKey(userID, ext)
	url, err := h.uploader.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		Fail(c, err)
		return
	}
	middleware.LoggerFromContext(c).Info("image uploaded", slog.String("object_key", key), slog.Int("size", len(data)))
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// readFormFile 读取 multipart 文件及其声明的类型，超过 limit 返回 InvalidInput。
func readFormFile(c *gin.Context, field string, limit int64) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", errcode.Wrap(errcode.InvalidInput, "missing file", err)
	}
	if limit > 0 && fh.Size > limit {
		return nil, "", errcode.New(errcode.InvalidInput, "file is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", errcode.Wrap(errcode.Internal, "open upload", err)
	}
	defer f.Close()

	r := io.Reader(f)
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", errcode.Wrap(errcode.Internal, "read upload", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, "", errcode.New(errcode.InvalidInput, "file is too large")
	}
	if len(data) == 0 {
		return nil, "", errcode.New(errcode.InvalidInput, "file is empty")
	}
	return data, fh.Header.Get("Content-Type"), nil
}
