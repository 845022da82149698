package api

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dutchcoders/go-clamd"

	"resumeBuilder/internal/errcode"
)

// Scanner 在文件落盘或解析前做病毒扫描。
type Scanner interface {
	Scan(ctx context.Context, data []byte) error
}

// ClamdScanner 通过 clamd 的 INSTREAM 扫描内容，地址为空时跳过扫描。
type ClamdScanner struct {
	addr string
}

// NewClamdScanner 构造 ClamdScanner，addr 形如 tcp://clamav:3310。
func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{addr: strings.TrimSpace(addr)}
}

func (s *ClamdScanner) Scan(ctx context.Context, data []byte) error {
	if s.addr == "" {
		return nil
	}
	abort := make(chan bool)
	defer close(abort)

	results, err := clamd.NewClamd(s.addr).ScanStream(bytes.NewReader(data), abort)
	if err != nil {
		return fmt.Errorf("clamd scan: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result, ok := <-results:
			if !ok {
				return nil
			}
			switch result.Status {
			case clamd.RES_OK:
			case clamd.RES_FOUND:
				return errcode.New(errcode.InvalidInput, "malicious file detected")
			default:
				return fmt.Errorf("clamd scan: %s %s", result.Status, result.Description)
			}
		}
	}
}
