package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// A4 纸张尺寸（英寸）。
const (
	A4WidthInches  = 8.27
	A4HeightInches = 11.69
)

// DefaultTimeout 是单次渲染的默认超时。
const DefaultTimeout = 30 * time.Second

// Session 表示一次渲染独占的无头浏览器实例。
type Session interface {
	SetContent(ctx context.Context, html string) error
	PrintA4(ctx context.Context) ([]byte, error)
	Close() error
}

// Launcher 启动新的浏览器进程。
type Launcher func(ctx context.Context) (Session, error)

// Renderer 每次调用都启动独立的浏览器，并在任何返回路径上关闭它。
type Renderer struct {
	engine  string
	launch  Launcher
	timeout time.Duration
	logger  *slog.Logger
}

// Option 调整 Renderer。
type Option func(*Renderer)

// WithTimeout 设置单次渲染超时。
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger 设置日志记录器。
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New 使用给定的启动器构造 Renderer。
func New(engine string, launch Launcher, opts ...Option) *Renderer {
	r := &Renderer{
		engine:  engine,
		launch:  launch,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Engine 返回渲染引擎名称。
func (r *Renderer) Engine() string { return r.engine }

// RenderPDF 将完整的 HTML 文档渲染为 A4 PDF。
func (r *Renderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	session, err := r.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch %s browser: %w", r.engine, err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			r.logger.Warn("close browser session failed",
				slog.String("engine", r.engine),
				slog.Any("error", closeErr),
			)
		}
	}()

	if err := session.SetContent(ctx, html); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}

	data, err := session.PrintA4(ctx)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("print pdf: empty output")
	}
	return data, nil
}

func float(v float64) *float64 { return &v }
