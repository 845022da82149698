// Package export 组装简历的 HTML、PDF 与 DOCX 导出。
package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"resumeBuilder/internal/docx"
	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/style"
)

// PDFContentType 是 PDF 响应的媒体类型。
const PDFContentType = "application/pdf"

// maxPictureBytes 限制内联头像的大小。
const maxPictureBytes = 2 << 20

// Loader 读取属于用户的简历及样式覆盖。
type Loader interface {
	LoadGraph(ctx context.Context, userID, resumeID uint) (*resume.Graph, error)
	FindCustomization(ctx context.Context, userID, resumeID uint, templateName string) (style.Overrides, error)
}

// PDFRenderer 把完整的 HTML 文档渲染为 A4 PDF。
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// PictureSource 读取本系统保存的头像。
type PictureSource interface {
	KeyFromURL(raw string) (string, bool)
	ReadObject(ctx context.Context, objectKey string, limit int64) ([]byte, string, error)
}

// Document 是一次导出的结果。
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service 负责导出流程。
type Service struct {
	loader   Loader
	html     *render.HTMLRenderer
	pdf      PDFRenderer
	pictures PictureSource
	logger   *slog.Logger
}

// Option 调整 Service。
type Option func(*Service)

// WithPictures 启用头像内联，使浏览器渲染时无需访问网络。
func WithPictures(p PictureSource) Option {
	return func(s *Service) { s.pictures = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(loader Loader, html *render.HTMLRenderer, pdf PDFRenderer, opts ...Option) *Service {
	s := &Service{loader: loader, html: html, pdf: pdf, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pdfEngine 返回渲染器报告的引擎名，测试替身没有引擎名。
func pdfEngine(r PDFRenderer) string {
	if e, ok := r.(interface{ Engine() string }); ok {
		return e.Engine()
	}
	return ""
}

// HTML 生成完整的 HTML 文档。未知模板回退到默认模板。
func (s *Service) HTML(ctx context.Context, userID, resumeID uint, templateName string) (string, *resume.Graph, error) {
	theme := s.html.Registry().Resolve(templateName)
	g, err := s.loader.LoadGraph(ctx, userID, resumeID)
	if err != nil {
		return "", nil, err
	}
	html, err := s.renderHTML(ctx, userID, g, theme)
	if err != nil {
		return "", nil, err
	}
	return html, g, nil
}

// Preview 渲染 HTML 预览。空模板名使用回退模板；未知模板输出 "模板不存在" 页面，found 为 false。
func (s *Service) Preview(ctx context.Context, w io.Writer, userID, resumeID uint, templateName string) (found bool, err error) {
	g, err := s.loader.LoadGraph(ctx, userID, resumeID)
	if err != nil {
		return false, err
	}
	registry := s.html.Registry()
	theme := registry.Fallback()
	if strings.TrimSpace(templateName) != "" {
		var ok bool
		if theme, ok = registry.Lookup(templateName); !ok {
			return false, s.html.RenderNotFound(w, templateName)
		}
	}
	html, err := s.renderHTML(ctx, userID, g, theme)
	if err != nil {
		return true, err
	}
	_, err = io.WriteString(w, html)
	return true, err
}

// PDF 导出 PDF，每次调用独占一个浏览器实例。
func (s *Service) PDF(ctx context.Context, userID, resumeID uint, templateName string) (doc *Document, err error) {
	started := time.Now()
	observed := metrics.Render{
		Format:   "pdf",
		Engine:   pdfEngine(s.pdf),
		Template: s.html.Registry().Resolve(templateName).Name,
	}
	defer func() { metrics.ObserveRender(observed, started, err) }()

	html, g, err := s.HTML(ctx, userID, resumeID, templateName)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.RenderPDF(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &Document{
		Filename:    Filename(g.Title, ".pdf"),
		ContentType: PDFContentType,
		Data:        data,
	}, nil
}

// DOCX 直接由简历数据生成，不应用样式覆盖。
func (s *Service) DOCX(ctx context.Context, userID, resumeID uint) (doc *Document, err error) {
	started := time.Now()
	defer func() { metrics.ObserveRender(metrics.Render{Format: "docx"}, started, err) }()

	g, err := s.loader.LoadGraph(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	data, err := docx.FromView(render.BuildView(g, s.html.Locale())).Bytes()
	if err != nil {
		return nil, fmt.Errorf("build docx: %w", err)
	}
	return &Document{
		Filename:    Filename(g.Title, ".docx"),
		ContentType: docx.ContentType,
		Data:        data,
	}, nil
}

func (s *Service) renderHTML(ctx context.Context, userID uint, g *resume.Graph, theme render.Theme) (string, error) {
	overrides, err := s.loader.FindCustomization(ctx, userID, g.ID, theme.Name)
	if err != nil {
		return "", err
	}
	view := render.BuildView(g, s.html.Locale())
	view.Personal.ProfilePicture = s.inlinePicture(ctx, view.Personal.ProfilePicture)

	var buf bytes.Buffer
	if err := s.html.Render(&buf, theme, view, overrides); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// inlinePicture 把本 Bucket 中的头像转为 data URI，失败时保留原地址。
func (s *Service) inlinePicture(ctx context.Context, src string) string {
	if s.pictures == nil || src == "" {
		return src
	}
	key, ok := s.pictures.KeyFromURL(src)
	if !ok {
		return src
	}
	data, contentType, err := s.pictures.ReadObject(ctx, key, maxPictureBytes)
	if err != nil {
		s.logger.Warn("inline profile picture failed", "object_key", key, "error", err)
		return src
	}
	if !strings.HasPrefix(contentType, "image/") {
		return src
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
