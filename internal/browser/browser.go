// Package browser drives the page that storefronts are loaded into.
package browser

import (
	"context"
	"errors"
)

// ErrPageNotFound is returned by the MockPage for urls it does not know.
var ErrPageNotFound = errors.New("page not found")

// A Page is a single, reusable browser tab. Calls are made strictly one
// after another.
type Page interface {
	// Navigate loads url and returns once the load event fired.
	Navigate(ctx context.Context, url string) error
	// HTML returns the outer html of the current document.
	HTML(ctx context.Context) (string, error)
	// Evaluate runs a javascript expression in the page and stores the
	// result in res, which may be nil.
	Evaluate(ctx context.Context, expression string, res any) error
	// FullScreenshot captures the whole scrollable page as png.
	FullScreenshot(ctx context.Context) ([]byte, error)
}

// A Session owns a running browser and the one page used with it.
type Session interface {
	Page() Page
	// Close shuts the browser down. It is safe to call more than once.
	Close()
}

// A Launcher starts browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}
