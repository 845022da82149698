// Package importer 把上传的 PDF/DOCX 简历交给 AI 解析为结构化 JSON。
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"resumeBuilder/internal/ai"
	"resumeBuilder/internal/docx"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/metrics"
)

// 支持的媒体类型。
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = docx.ContentType
)

// Importer 串联类型检查、文本提取与 AI 解析。
type Importer struct {
	extractors map[string]Extractor
	gen        ai.Generator
	timeout    time.Duration
	logger     *slog.Logger
}

// Option 调整 Importer。
type Option func(*Importer)

// WithExtractor 替换某种媒体类型的提取器。
func WithExtractor(mediaType string, e Extractor) Option {
	return func(im *Importer) { im.extractors[mediaType] = e }
}

func WithTimeout(d time.Duration) Option {
	return func(im *Importer) { im.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) { im.logger = logger }
}

// New 的 gen 应当配置为返回 JSON 文本。
func New(gen ai.Generator, opts ...Option) *Importer {
	im := &Importer{
		extractors: map[string]Extractor{
			MediaTypePDF:  PDFText{},
			MediaTypeDOCX: DOCXText{},
		},
		gen:    gen,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import 返回 AI 给出的 JSON，原样交给调用方。
func (im *Importer) Import(ctx context.Context, declaredType string, data []byte) (json.RawMessage, error) {
	result, err := im.importFile(ctx, declaredType, data)
	if err != nil {
		metrics.ObserveImport(errcode.KindOf(err).String())
		return nil, err
	}
	metrics.ObserveImport("ok")
	return result, nil
}

func (im *Importer) importFile(ctx context.Context, declaredType string, data []byte) (json.RawMessage, error) {
	mediaType := DetectMediaType(declaredType, data)
	extractor, ok := im.extractors[mediaType]
	if !ok {
		return nil, errcode.New(errcode.UnsupportedMediaType, "only PDF and DOCX files can be imported")
	}

	if im.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, im.timeout)
		defer cancel()
	}

	text, err := extractor.Extract(ctx, data)
	if err != nil {
		im.logger.Warn("extract resume text failed", "media_type", mediaType, "error", err)
		return nil, errcode.Wrap(errcode.ExtractionFailed, "could not extract text from file", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errcode.New(errcode.ExtractionFailed, "could not extract text from file")
	}

	answer, err := im.gen.Generate(ctx, BuildPrompt(text))
	if err != nil {
		if errcode.KindOf(err) != errcode.Internal {
			return nil, err
		}
		return nil, fmt.Errorf("parse resume with ai: %w", err)
	}

	raw := []byte(strings.TrimSpace(answer))
	if !json.Valid(raw) {
		im.logger.Warn("ai response is not valid json", "length", len(raw))
		return nil, errcode.New(errcode.ParseFailed, "failed to parse AI response")
	}
	return json.RawMessage(raw), nil
}

// Supports 判断媒体类型是否可以导入。
func (im *Importer) Supports(mediaType string) bool {
	_, ok := im.extractors[mediaType]
	return ok
}

// DetectMediaType 优先使用声明的类型，缺失或为通用二进制类型时按内容嗅探。
func DetectMediaType(declared string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		detected := mimetype.Detect(data)
		mediaType, _, _ = mime.ParseMediaType(detected.String())
	}
	return strings.ToLower(mediaType)
}
