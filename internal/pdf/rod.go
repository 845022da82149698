package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodOptions 配置 go-rod 启动的 Chromium。
type RodOptions struct {
	Bin       string
	NoSandbox bool
}

// NewRod 构造基于 go-rod 的 Renderer。
func NewRod(o RodOptions, opts ...Option) *Renderer {
	return New("rod", rodLauncher(o), opts...)
}

func rodLauncher(o RodOptions) Launcher {
	return func(ctx context.Context) (Session, error) {
		l := launcher.New().
			Context(ctx).
			Headless(true).
			NoSandbox(o.NoSandbox)

		if o.Bin != "" {
			l = l.Bin(o.Bin)
		} else if path, ok := launcher.LookPath(); ok {
			l = l.Bin(path)
		}

		controlURL, err := l.Launch()
		if err != nil {
			l.Kill()
			l.Cleanup()
			return nil, fmt.Errorf("launch chromium: %w", err)
		}

		browser := rod.New().Context(ctx).ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			l.Kill()
			l.Cleanup()
			return nil, fmt.Errorf("connect browser: %w", err)
		}

		page, err := browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			_ = browser.Close()
			l.Kill()
			l.Cleanup()
			return nil, fmt.Errorf("create page: %w", err)
		}

		return &rodSession{launcher: l, browser: browser, page: page}, nil
	}
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func (s *rodSession) SetContent(ctx context.Context, html string) error {
	page := s.page.Context(ctx)
	if err := page.SetDocumentContent(html); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	return nil
}

func (s *rodSession) PrintA4(ctx context.Context) ([]byte, error) {
	reader, err := s.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        float(A4WidthInches),
		PaperHeight:       float(A4HeightInches),
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}

// Close 依次关闭页面、浏览器并回收进程。
func (s *rodSession) Close() error {
	var errs []error
	if err := s.page.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close page: %w", err))
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	s.launcher.Kill()
	s.launcher.Cleanup()
	return errors.Join(errs...)
}
