package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/jakopako/storesnap/internal/config"
	"github.com/jakopako/storesnap/internal/log"
)

// ChromeLauncher starts a local chrome through chromedp.
type ChromeLauncher struct {
	*config.BrowserConfig
}

func NewChromeLauncher(bc *config.BrowserConfig) *ChromeLauncher {
	return &ChromeLauncher{BrowserConfig: bc}
}

func (l *ChromeLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(l.WindowWidth, l.WindowHeight), // desktop view, storefronts hide things on mobile
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if l.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.UserAgent))
	}
	if l.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.ExecPath))
	}
	if l.ShowWindow {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	return opts
}

// Launch starts chrome and opens the tab. The browser is started eagerly so
// that later per-call timeouts only ever bound a single navigation and never
// the lifetime of the browser itself.
func (l *ChromeLauncher) Launch(ctx context.Context) (Session, error) {
	logger := log.LoggerFromContext(ctx).With(slog.String("browser", "chrome"))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	s := &ChromeSession{
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}
	s.page = &ChromePage{tabCtx: tabCtx}

	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	// log chrome version in debug mode
	if config.Debug {
		_ = chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			protocolVersion, product, revision, userAgent, jsVersion, err := browser.GetVersion().Do(ctx)
			if err != nil {
				logger.Warn("failed to get chrome version", slog.String("err", err.Error()))
				return nil
			}
			logger.Debug(fmt.Sprintf("chrome version: protocolVersion=%s, product=%s, revision=%s, userAgent=%s, jsVersion=%s",
				protocolVersion, product, revision, userAgent, jsVersion))
			return nil
		}))
	}
	logger.Debug("chrome started", slog.Int("width", l.WindowWidth), slog.Int("height", l.WindowHeight))
	return s, nil
}

// ChromeSession is a running chrome with a single tab.
type ChromeSession struct {
	page   *ChromePage
	cancel context.CancelFunc
	once   sync.Once
}

func (s *ChromeSession) Page() Page {
	return s.page
}

func (s *ChromeSession) Close() {
	s.once.Do(s.cancel)
}

// ChromePage implements Page on top of a chromedp tab context. The ctx
// passed to its methods only bounds the individual call; the tab itself
// lives as long as the session.
type ChromePage struct {
	tabCtx context.Context
}

// run executes actions on the tab while honoring the deadline and
// cancellation of ctx.
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		// report the caller's reason (deadline or cancel) rather than the
		// derived context's
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *ChromePage) HTML(ctx context.Context) (string, error) {
	var body string
	err := p.run(ctx, chromedp.OuterHTML("html", &body, chromedp.ByQuery))
	return body, err
}

func (p *ChromePage) Evaluate(ctx context.Context, expression string, res any) error {
	return p.run(ctx, chromedp.Evaluate(expression, res))
}

func (p *ChromePage) FullScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	// quality 100 makes chrome encode png instead of jpeg
	err := p.run(ctx, chromedp.FullScreenshot(&buf, 100))
	return buf, err
}
