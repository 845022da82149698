package pdf

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpOptions 配置 chromedp 启动的 Chrome。
type ChromedpOptions struct {
	ExecPath  string
	NoSandbox bool
}

// NewChromedp 构造基于 chromedp 的 Renderer。
func NewChromedp(o ChromedpOptions, opts ...Option) *Renderer {
	return New("chromedp", chromedpLauncher(o), opts...)
}

func chromedpLauncher(o ChromedpOptions) Launcher {
	return func(ctx context.Context) (Session, error) {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("no-sandbox", o.NoSandbox),
		)
		if o.ExecPath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(o.ExecPath))
		}

		allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// 空 Run 会启动浏览器进程。
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			return nil, fmt.Errorf("start chrome: %w", err)
		}

		return &chromedpSession{
			ctx:           browserCtx,
			browserCancel: browserCancel,
			allocCancel:   allocCancel,
		}, nil
	}
}

type chromedpSession struct {
	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

func (s *chromedpSession) SetContent(_ context.Context, html string) error {
	return chromedp.Run(s.ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *chromedpSession) PrintA4(_ context.Context) ([]byte, error) {
	var buf []byte
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPreferCSSPageSize(true).
			WithPaperWidth(A4WidthInches).
			WithPaperHeight(A4HeightInches).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Close 关闭浏览器并结束进程。
func (s *chromedpSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.browserCancel()
	s.allocCancel()
	if err != nil {
		return fmt.Errorf("cancel chrome: %w", err)
	}
	return nil
}
