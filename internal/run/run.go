// Package run implements a capture run over a list of storefronts: three
// screenshots per store, homepage, first category and first product.
package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jakopako/storesnap/internal/browser"
	"github.com/jakopako/storesnap/internal/capture"
	"github.com/jakopako/storesnap/internal/config"
	"github.com/jakopako/storesnap/internal/log"
	"github.com/jakopako/storesnap/internal/target"
)

// ErrNoTargets is returned when the input holds no usable url. No run is
// started in that case.
var ErrNoTargets = errors.New("no store urls given")

// TimestampLayout names the output folder of a run.
const TimestampLayout = "2006-01-02_15-04-05"

// LogSink receives the human readable log of a run.
type LogSink interface {
	Clear()
	Append(line string)
}

// ProgressSink displays how many targets are done.
type ProgressSink interface {
	SetMax(max int)
	SetValue(value int)
}

// TargetResult lists what was captured for one target.
type TargetResult struct {
	Target target.Target
	Label  string
	Steps  []target.Step
	Err    error
}

// Result describes a finished run.
type Result struct {
	OutputRoot string
	Started    time.Time
	Finished   time.Time
	Targets    []TargetResult
}

// Runner executes runs. One runner can execute several runs but only one at
// a time.
type Runner struct {
	Config   *config.Config
	Launcher browser.Launcher
	Capturer *capture.Capturer
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewRunner(c *config.Config, l browser.Launcher) *Runner {
	return &Runner{
		Config:   c,
		Launcher: l,
		Capturer: capture.NewCapturer(&c.Capture),
		Now:      time.Now,
	}
}

// Run captures every store listed in raw, one url per line. Only invalid
// input and a browser that cannot be started fail the run, problems with
// single stores are logged and skipped.
func (r *Runner) Run(ctx context.Context, raw string, logs LogSink, progress ProgressSink) (*Result, error) {
	logs.Clear()

	targets := target.Parse(raw)
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	now := r.now()
	res := &Result{
		OutputRoot: filepath.Join(r.Config.OutputDir, now.Format(TimestampLayout)),
		Started:    now,
	}
	logger := log.LoggerFromContext(ctx).With(slog.String("run", filepath.Base(res.OutputRoot)))
	ctx = log.ContextWithLogger(ctx, logger)

	if err := os.MkdirAll(res.OutputRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", res.OutputRoot, err)
	}

	progress.SetMax(len(targets))
	progress.SetValue(0)

	logger.Info(fmt.Sprintf("starting run with %d stores", len(targets)))
	session, err := r.Launcher.Launch(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	page := session.Page()

	for i, t := range targets {
		tr := r.processTarget(ctx, page, t, res.OutputRoot, logs)
		if tr.Err != nil {
			logs.Append(fmt.Sprintf("[%s] Unexpected Error: %v", t, tr.Err))
		}
		res.Targets = append(res.Targets, tr)
		progress.SetValue(i + 1)

		if i < len(targets)-1 {
			_ = capture.Wait(ctx, r.Config.Capture.TargetDelay)
		}
	}

	session.Close()
	res.Finished = r.now()
	logger.Info("run finished", slog.Duration("took", res.Finished.Sub(res.Started)))
	logs.Append(fmt.Sprintf("All screenshots saved in '%s'.", res.OutputRoot))
	return res, nil
}

// processTarget runs the homepage, category, product sequence for t. A panic
// anywhere in the sequence is turned into the target's error so that the
// remaining targets still get their turn.
func (r *Runner) processTarget(ctx context.Context, page browser.Page, t target.Target, root string, logs LogSink) (tr TargetResult) {
	tr.Target = t
	defer func() {
		if p := recover(); p != nil {
			tr.Err = fmt.Errorf("panic: %v", p)
		}
	}()

	label, err := t.Label()
	if err != nil {
		tr.Err = err
		return tr
	}
	tr.Label = label

	dir := filepath.Join(root, label)
	if err := os.MkdirAll(dir, 0755); err != nil {
		tr.Err = err
		return tr
	}

	logger := log.LoggerFromContext(ctx).With(slog.String("store", label))
	ctx = log.ContextWithLogger(ctx, logger)
	logs.Append(fmt.Sprintf("Processing store: %s", label))

	if r.Capturer.Capture(ctx, page, t.String(), target.StepHomepage.FileName(), dir, logs) {
		tr.Steps = append(tr.Steps, target.StepHomepage)
	}

	// every further step follows the first matching link on the previous page
	from := t.String()
	for _, step := range target.Steps[1:] {
		href, found, err := r.Capturer.FindLink(ctx, page, from, step.LinkPattern())
		if err != nil {
			logs.Append(capture.FailureLine(from, err))
			return tr
		}
		if !found {
			logs.Append(fmt.Sprintf("[%s] No %s link found.", label, step))
			logger.Info(fmt.Sprintf("no %s link on %s", step, from))
			return tr
		}

		next := t.ResolveLink(href)
		logger.Debug(fmt.Sprintf("found %s link", step), slog.String("href", href), slog.String("resolved", next))
		if r.Capturer.Capture(ctx, page, next, step.FileName(), dir, logs) {
			tr.Steps = append(tr.Steps, step)
		}
		from = next
	}
	return tr
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
