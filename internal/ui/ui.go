// Package ui is the terminal front end: paste store urls, start a run and
// follow its progress and log.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/jakopako/storesnap/internal/log"
	"github.com/jakopako/storesnap/internal/run"
	"github.com/rivo/tview"
)

const (
	mainPage  = "main"
	modalPage = "modal"
)

// A Runner executes a capture run. *run.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, raw string, logs run.LogSink, progress run.ProgressSink) (*run.Result, error)
}

// App is the terminal application.
type App struct {
	app      *tview.Application
	pages    *tview.Pages
	urls     *tview.TextArea
	logs     *logView
	progress *progressBar
	runner   Runner
	running  atomic.Bool
	queue    queueFunc
	logger   *slog.Logger
	// ctx is cancelled when the application stops so that an active run
	// gives up instead of driving the browser in the background.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp builds the form around runner.
func NewApp(ctx context.Context, runner Runner) *App {
	a := newApp(ctx, runner, nil)
	a.queue = untilDone(a.ctx, func(f func()) { a.app.QueueUpdateDraw(f) })
	return a
}

// untilDone wraps queue so that callers stop waiting once ctx is done.
// QueueUpdateDraw blocks until the event loop has run f, which never
// happens after the application stopped.
func untilDone(ctx context.Context, queue queueFunc) queueFunc {
	return func(f func()) {
		if ctx.Err() != nil {
			return
		}
		done := make(chan struct{})
		go func() {
			defer close(done)
			queue(f)
		}()
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
}

func newApp(ctx context.Context, runner Runner, queue queueFunc) *App {
	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		runner: runner,
		queue:  queue,
		logger: log.LoggerFromContext(ctx).With(slog.String("component", "ui")),
		ctx:    ctx,
		cancel: cancel,
	}
	a.build()
	return a
}

func (a *App) build() {
	// the sinks resolve a.queue late, NewApp sets it after build
	queue := func(f func()) { a.queue(f) }

	a.urls = tview.NewTextArea().
		SetPlaceholder("https://my-store.example.com")
	a.urls.SetBorder(true).SetTitle(" Paste store URLs (one per line) ")

	a.logs = newLogView(queue)
	a.logs.view.SetBackgroundColor(tcell.NewRGBColor(0x11, 0x11, 0x11))
	a.progress = newProgressBar(queue)

	button := tview.NewButton("Start Screenshots").SetSelectedFunc(func() {
		a.start()
	})
	help := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText("Ctrl-S start   Tab switch focus   Esc quit")

	buttonRow := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(button, 21, 0, false).
		AddItem(nil, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.urls, 0, 2, true).
		AddItem(a.progress.view, 3, 0, false).
		AddItem(a.logs.view, 0, 3, false).
		AddItem(buttonRow, 1, 0, false).
		AddItem(help, 1, 0, false)

	focusables := []tview.Primitive{a.urls, button, a.logs.view}
	layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlS:
			a.start()
			return nil
		case tcell.KeyEscape:
			a.cancel()
			a.app.Stop()
			return nil
		case tcell.KeyTab:
			for i, p := range focusables {
				if p.HasFocus() {
					a.app.SetFocus(focusables[(i+1)%len(focusables)])
					return nil
				}
			}
			a.app.SetFocus(a.urls)
			return nil
		}
		return event
	})

	a.pages.AddPage(mainPage, layout, true, true)
}

// Run blocks until the user quits.
func (a *App) Run() error {
	defer a.cancel()
	return a.app.SetRoot(a.pages, true).EnableMouse(true).Run()
}

// start kicks off a run in the background. The run blocks for minutes, the
// event loop has to stay free to redraw progress and log in the meantime.
func (a *App) start() {
	if !a.running.CompareAndSwap(false, true) {
		a.logger.Debug("run already active, ignoring start")
		return
	}
	raw := a.urls.GetText()
	go func() {
		defer a.running.Store(false)
		a.execute(a.ctx, raw)
	}()
}

func (a *App) execute(ctx context.Context, raw string) {
	ctx = log.ContextWithLogger(ctx, a.logger)
	res, err := a.runner.Run(ctx, raw, a.logs, a.progress)
	switch {
	case errors.Is(err, run.ErrNoTargets):
		a.showModal("Input Error", "Please enter at least one store URL.")
	case err != nil:
		a.logger.Error(err.Error())
		a.logs.Append(fmt.Sprintf("Run failed: %v", err))
		a.showModal("Error", fmt.Sprintf("The run could not be started:\n%v", err))
	default:
		a.showModal("Done", fmt.Sprintf("All screenshots saved in '%s'.", res.OutputRoot))
	}
}

// showModal displays a dialog with an OK button on top of the form.
func (a *App) showModal(title, text string) {
	a.queue(func() {
		modal := tview.NewModal().
			SetText(title + "\n\n" + text).
			AddButtons([]string{"OK"}).
			SetDoneFunc(func(int, string) {
				a.pages.RemovePage(modalPage)
				a.app.SetFocus(a.urls)
			})
		a.pages.AddPage(modalPage, modal, false, true)
		a.app.SetFocus(modal)
	})
}
