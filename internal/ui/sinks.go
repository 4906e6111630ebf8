package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// queueFunc schedules f on the ui event loop. The application's
// QueueUpdateDraw in production, a direct call in tests.
type queueFunc func(f func())

// logView shows the run log and keeps the newest line in sight.
type logView struct {
	view  *tview.TextView
	queue queueFunc
}

func newLogView(queue queueFunc) *logView {
	view := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	view.SetBorder(true).SetTitle(" Log ")
	return &logView{view: view, queue: queue}
}

func (l *logView) Clear() {
	l.queue(func() {
		l.view.Clear()
	})
}

func (l *logView) Append(line string) {
	l.queue(func() {
		fmt.Fprintf(l.view, "[%s]%s[-]\n", lineColor(line), tview.Escape(line))
		l.view.ScrollToEnd()
	})
}

// lineColor picks a color from the wording of a log line.
func lineColor(line string) string {
	switch {
	case strings.Contains(line, "Error") || strings.Contains(line, "Timeout"):
		return "red"
	case strings.Contains(line, "No category link") || strings.Contains(line, "No product link"):
		return "yellow"
	case strings.HasPrefix(line, "Processing store"):
		return "aqua"
	default:
		return "green"
	}
}

const defaultBarWidth = 60

// progressBar shows how many stores of the run are done.
type progressBar struct {
	view       *tview.TextView
	queue      queueFunc
	max, value int
}

func newProgressBar(queue queueFunc) *progressBar {
	view := tview.NewTextView().SetDynamicColors(true)
	view.SetBorder(true).SetTitle(" Progress ")
	return &progressBar{view: view, queue: queue}
}

func (p *progressBar) SetMax(max int) {
	p.queue(func() {
		p.max = max
		p.redraw()
	})
}

func (p *progressBar) SetValue(value int) {
	p.queue(func() {
		p.value = value
		p.redraw()
	})
}

func (p *progressBar) redraw() {
	_, _, width, _ := p.view.GetInnerRect()
	if width <= 0 {
		width = defaultBarWidth // not drawn yet
	}
	p.view.SetText(renderProgress(p.value, p.max, width))
}

// renderProgress draws a bar of the given width followed by the count.
func renderProgress(current, total, width int) string {
	label := fmt.Sprintf(" %d/%d", current, total)
	width -= len(label)
	if width < 1 {
		return strings.TrimSpace(label)
	}
	filled := 0
	if total > 0 {
		filled = int(float64(current) / float64(total) * float64(width))
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[green]" + strings.Repeat("█", filled) + "[-]" + strings.Repeat("░", width-filled) + label
}
