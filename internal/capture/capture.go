// Package capture loads a page, prepares it for a clean picture and saves a
// full page screenshot.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jakopako/storesnap/internal/browser"
	"github.com/jakopako/storesnap/internal/config"
	"github.com/jakopako/storesnap/internal/log"
	"github.com/jakopako/storesnap/internal/utils"
)

// ErrTimeout is returned when a page does not finish loading in time.
var ErrTimeout = errors.New("timeout while loading the page")

const maxErrLength = 300

// A LineWriter receives human readable status lines.
type LineWriter interface {
	Append(line string)
}

// Capturer takes the screenshots. It holds no state between calls, the page
// handle is passed in by the caller.
type Capturer struct {
	*config.CaptureConfig
}

func NewCapturer(cc *config.CaptureConfig) *Capturer {
	return &Capturer{CaptureConfig: cc}
}

// Capture loads url into page and saves a full page screenshot as
// dir/fileName, which requires dir to exist. Failures are reported to lines
// and result in false; they never abort the caller.
func (c *Capturer) Capture(ctx context.Context, page browser.Page, url, fileName, dir string, lines LineWriter) bool {
	logger := log.LoggerFromContext(ctx).With(slog.String("url", url), slog.String("file", fileName))
	ctx = log.ContextWithLogger(ctx, logger)

	if err := c.capture(ctx, page, url, filepath.Join(dir, fileName), lines); err != nil {
		logger.Warn("capture failed", slog.String("err", err.Error()))
		lines.Append(FailureLine(url, err))
		return false
	}
	_ = Wait(ctx, c.StepDelay)
	return true
}

func (c *Capturer) capture(ctx context.Context, page browser.Page, url, path string, lines LineWriter) error {
	logger := log.LoggerFromContext(ctx)

	lines.Append(fmt.Sprintf("Loading: %s", url))
	if err := c.navigate(ctx, page, url, c.PageTimeout); err != nil {
		return err
	}
	lines.Append(fmt.Sprintf("Loaded successfully: %s", url))

	if err := Wait(ctx, c.SettleDelay); err != nil {
		return err
	}
	if err := c.autoScroll(ctx, page); err != nil {
		return fmt.Errorf("scrolling failed: %w", err)
	}

	var removed int64
	if err := page.Evaluate(ctx, removeOverlaysJS(), &removed); err != nil {
		return fmt.Errorf("removing overlays failed: %w", err)
	}
	logger.Debug(fmt.Sprintf("removed %d overlay elements", removed))

	// the screenshot gets its own bound, huge pages can take a while
	shotCtx, cancel := context.WithTimeout(ctx, c.PageTimeout)
	defer cancel()
	buf, err := page.FullScreenshot(shotCtx)
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return err
	}
	logger.Debug(fmt.Sprintf("wrote %d bytes", len(buf)))
	lines.Append(fmt.Sprintf("Screenshot saved: %s", path))
	return nil
}

// FindLink loads url into page again and returns the href of the first
// anchor containing pattern.
func (c *Capturer) FindLink(ctx context.Context, page browser.Page, url, pattern string) (string, bool, error) {
	if err := c.navigate(ctx, page, url, c.DiscoveryTimeout); err != nil {
		return "", false, err
	}
	if err := Wait(ctx, c.SettleDelay); err != nil {
		return "", false, err
	}
	body, err := page.HTML(ctx)
	if err != nil {
		return "", false, err
	}
	return browser.FirstLink(body, pattern)
}

func (c *Capturer) navigate(ctx context.Context, page browser.Page, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := page.Navigate(navCtx, url)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// autoScroll walks down the page in steps so lazy loaded sections render,
// then returns to the top.
func (c *Capturer) autoScroll(ctx context.Context, page browser.Page) error {
	if c.ScrollStep <= 0 || c.ScrollMax <= 0 {
		return nil
	}

	scrolled := 0
	for scrolled < c.ScrollMax {
		// the height is read every round since lazy content makes it grow
		var height int64
		if err := page.Evaluate(ctx, scrollHeightJS, &height); err != nil {
			return err
		}
		if int64(scrolled) >= height {
			break
		}
		if err := page.Evaluate(ctx, scrollByJS(c.ScrollStep), nil); err != nil {
			return err
		}
		scrolled += c.ScrollStep
		if err := Wait(ctx, c.ScrollPause); err != nil {
			return err
		}
	}

	if err := page.Evaluate(ctx, scrollTopJS, nil); err != nil {
		return err
	}
	return Wait(ctx, c.SettleDelay)
}

// FailureLine formats the log line for a failed page load or capture.
func FailureLine(url string, err error) string {
	if errors.Is(err, ErrTimeout) {
		return fmt.Sprintf("[%s] Timeout while loading the page.", url)
	}
	return fmt.Sprintf("[%s] Error: %s", url, utils.ShortenString(utils.SingleLine(err.Error()), maxErrLength))
}

// Wait blocks for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
