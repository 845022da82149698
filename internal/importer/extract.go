package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// Extractor 从文件内容中提取纯文本。
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorFunc 允许普通函数实现 Extractor。
type ExtractorFunc func(ctx context.Context, data []byte) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

// PDFText 使用 ledongthuc/pdf 读取文本层。
type PDFText struct{}

func (PDFText) Extract(ctx context.Context, data []byte) (text string, err error) {
	// 损坏的 PDF 可能让解析器 panic。
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("copy pdf text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// maxDocumentXML 限制 word/document.xml 解压后的大小。
const maxDocumentXML = 16 << 20

// DOCXText 使用 docconv 读取 Word 文档文本。
type DOCXText struct{}

func (DOCXText) Extract(ctx context.Context, data []byte) (string, error) {
	if err := checkDocumentSize(data, maxDocumentXML); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("convert docx: %w", err)
	}
	return text, nil
}

// checkDocumentSize 拒绝正文解压后超过 limit 的文档。
// archive/zip 读取时会按头部声明的大小截断，头部不会被绕过。
func checkDocumentSize(data []byte, limit uint64) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		if f.UncompressedSize64 > limit {
			return fmt.Errorf("docx body is %d bytes, limit is %d", f.UncompressedSize64, limit)
		}
		return nil
	}
	return errors.New("docx has no word/document.xml")
}
