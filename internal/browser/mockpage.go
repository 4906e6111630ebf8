package browser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// MockPage serves canned html from memory. It stands in for chrome in
// tests.
type MockPage struct {
	pagesMap map[string]string
	// Timeouts lists urls whose navigation exceeds the deadline.
	Timeouts map[string]bool
	// ScreenshotErr, if set, is returned by FullScreenshot.
	ScreenshotErr error
	// ScrollHeight is reported for document.body.scrollHeight.
	ScrollHeight int64
	// Removed is reported as the result of any other expression.
	Removed int64

	current string
	// Visited records every navigation in order, Scripts every evaluated
	// expression.
	Visited []string
	Scripts []string
}

func NewMockPage(pages map[string]string) *MockPage {
	mp := &MockPage{
		pagesMap: map[string]string{},
		Timeouts: map[string]bool{},
	}
	for u, content := range pages {
		mp.pagesMap[u] = content
	}
	return mp
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	m.Visited = append(m.Visited, url)
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Timeouts[url] {
		return fmt.Errorf("navigating to %s: %w", url, context.DeadlineExceeded)
	}
	if _, ok := m.pagesMap[url]; !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, url)
	}
	m.current = url
	return nil
}

func (m *MockPage) HTML(ctx context.Context) (string, error) {
	if m.current == "" {
		return "", ErrPageNotFound
	}
	return m.pagesMap[m.current], nil
}

func (m *MockPage) Evaluate(ctx context.Context, expression string, res any) error {
	m.Scripts = append(m.Scripts, expression)
	if r, ok := res.(*int64); ok {
		if strings.Contains(expression, "scrollHeight") {
			*r = m.ScrollHeight
		} else {
			*r = m.Removed
		}
	}
	return nil
}

func (m *MockPage) FullScreenshot(ctx context.Context) ([]byte, error) {
	if m.ScreenshotErr != nil {
		return nil, m.ScreenshotErr
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MockLauncher hands out sessions around a fixed MockPage.
type MockLauncher struct {
	Page      *MockPage
	LaunchErr error
	Launched  int
	Closed    int
}

func (l *MockLauncher) Launch(ctx context.Context) (Session, error) {
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	l.Launched++
	return &mockSession{launcher: l}, nil
}

type mockSession struct {
	launcher *MockLauncher
	closed   bool
}

func (s *mockSession) Page() Page {
	return s.launcher.Page
}

func (s *mockSession) Close() {
	if !s.closed {
		s.closed = true
		s.launcher.Closed++
	}
}
