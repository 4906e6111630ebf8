package browser

import (
	"testing"
)

func TestFirstLink(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		pattern  string
		expected string
		found    bool
	}{
		{
			name: "first in document order wins",
			html: `<html><body>
				<nav><a href="/pages/about">About</a><a href="/collections/summer">Summer</a></nav>
				<main><a href="/collections/all">All</a></main>
			</body></html>`,
			pattern:  "/collections/",
			expected: "/collections/summer",
			found:    true,
		},
		{
			name:     "absolute href",
			html:     `<a href="https://shop.test/products/red-shirt">Shirt</a><a href="/products/blue">Blue</a>`,
			pattern:  "/products/",
			expected: "https://shop.test/products/red-shirt",
			found:    true,
		},
		{
			name:    "no match",
			html:    `<a href="/pages/contact">Contact</a><div data-href="/collections/x"></div>`,
			pattern: "/collections/",
			found:   false,
		},
		{
			name:    "anchors without href are ignored",
			html:    `<a name="/products/">anchor</a>`,
			pattern: "/products/",
			found:   false,
		},
		{
			name:     "nested deep in the tree",
			html:     `<div><ul><li><span><a class="card" href="/collections/shoes?page=2">Shoes</a></span></li></ul></div>`,
			pattern:  "/collections/",
			expected: "/collections/shoes?page=2",
			found:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			href, found, err := FirstLink(tt.html, tt.pattern)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if found != tt.found {
				t.Fatalf("expected found=%v, got %v", tt.found, found)
			}
			if href != tt.expected {
				t.Fatalf("expected href %q, got %q", tt.expected, href)
			}
		})
	}
}
