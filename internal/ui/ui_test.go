package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jakopako/storesnap/internal/run"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func direct(f func()) { f() }

type fakeRunner struct {
	raw    string
	result *run.Result
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, raw string, logs run.LogSink, progress run.ProgressSink) (*run.Result, error) {
	f.raw = raw
	logs.Clear()
	if f.err != nil {
		return nil, f.err
	}
	progress.SetMax(2)
	progress.SetValue(0)
	logs.Append("Processing store: a_test")
	progress.SetValue(1)
	logs.Append("[b_test] No category link found.")
	progress.SetValue(2)
	return f.result, nil
}

func TestExecuteCompletes(t *testing.T) {
	fr := &fakeRunner{result: &run.Result{OutputRoot: "screenshots/2024-03-09_14-05-07"}}
	a := newApp(context.Background(), fr, direct)
	a.urls.SetText("https://a.test\nhttps://b.test", true)

	a.execute(a.ctx, a.urls.GetText())

	assert.Equal(t, "https://a.test\nhttps://b.test", fr.raw)
	logText := a.logs.view.GetText(true)
	assert.Contains(t, logText, "Processing store: a_test")
	assert.Contains(t, logText, "No category link found.")
	assert.Contains(t, a.progress.view.GetText(true), "2/2")
	name, _ := a.pages.GetFrontPage()
	assert.Equal(t, modalPage, name)
}

func TestExecuteEmptyInput(t *testing.T) {
	a := newApp(context.Background(), &fakeRunner{err: run.ErrNoTargets}, direct)

	a.execute(a.ctx, "   ")

	assert.True(t, a.pages.HasPage(modalPage))
	assert.Equal(t, "", strings.TrimSpace(a.logs.view.GetText(true)))
}

func TestExecuteLaunchFailure(t *testing.T) {
	a := newApp(context.Background(), &fakeRunner{err: errors.New("chrome not found")}, direct)

	a.execute(a.ctx, "https://a.test")

	assert.True(t, a.pages.HasPage(modalPage))
	assert.Contains(t, a.logs.view.GetText(true), "Run failed: chrome not found")
}

func TestLogViewClear(t *testing.T) {
	l := newLogView(direct)
	l.Append("Loading: https://a.test")
	require.Contains(t, l.view.GetText(true), "Loading: https://a.test")
	l.Clear()
	assert.Equal(t, "", l.view.GetText(true))
}

func TestLineColor(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"[https://a.test] Timeout while loading the page.", "red"},
		{"[https://a.test] Error: net::ERR_NAME_NOT_RESOLVED", "red"},
		{"[https://a.test] Unexpected Error: url has no host", "red"},
		{"[a_test] No product link found.", "yellow"},
		{"Processing store: a_test", "aqua"},
		{"Screenshot saved: screenshots/x/a_test/homepage.png", "green"},
	}

	for _, tt := range tests {
		if got := lineColor(tt.line); got != tt.expected {
			t.Errorf("lineColor(%q) = %q; want %q", tt.line, got, tt.expected)
		}
	}
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		current, total, width int
		filled, empty         int
		label                 string
	}{
		{0, 4, 14, 0, 10, " 0/4"},
		{2, 4, 14, 5, 5, " 2/4"},
		{4, 4, 14, 10, 0, " 4/4"},
		{0, 0, 14, 0, 10, " 0/0"},
		{5, 4, 14, 10, 0, " 5/4"},
	}

	for _, tt := range tests {
		out := renderProgress(tt.current, tt.total, tt.width)
		if c := strings.Count(out, "█"); c != tt.filled {
			t.Errorf("renderProgress(%d, %d, %d) has %d filled cells; want %d", tt.current, tt.total, tt.width, c, tt.filled)
		}
		if c := strings.Count(out, "░"); c != tt.empty {
			t.Errorf("renderProgress(%d, %d, %d) has %d empty cells; want %d", tt.current, tt.total, tt.width, c, tt.empty)
		}
		if !strings.HasSuffix(out, tt.label) {
			t.Errorf("renderProgress(%d, %d, %d) = %q; want suffix %q", tt.current, tt.total, tt.width, out, tt.label)
		}
	}

	if out := renderProgress(1, 2, 3); out != "1/2" {
		t.Errorf("expected plain count for narrow bars, got %q", out)
	}
}

func TestStartIgnoredWhileRunning(t *testing.T) {
	fr := &fakeRunner{result: &run.Result{}}
	a := newApp(context.Background(), fr, direct)
	a.running.Store(true)

	a.start()

	assert.Equal(t, "", fr.raw)
	assert.True(t, a.running.Load())
}

func TestUntilDoneStopsWaitingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	// a queue whose event loop is gone never runs f
	stalled := func(f func()) { <-release }
	queue := untilDone(ctx, stalled)

	returned := make(chan struct{})
	go func() {
		queue(func() {})
		close(returned)
	}()
	cancel()

	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("queued update still blocked after cancel")
	}

	ran := false
	queue(func() { ran = true })
	assert.False(t, ran)
}

func TestUntilDoneRunsUpdates(t *testing.T) {
	ran := false
	untilDone(context.Background(), direct)(func() { ran = true })
	assert.True(t, ran)
}
