// Package target turns operator input into storefront targets and knows the
// fixed sequence of capture steps for each of them.
package target

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoHost is returned when a target URL has no host component.
var ErrNoHost = errors.New("url has no host")

// A Target is a single storefront URL supplied by the operator.
type Target string

// newlines maps windows and classic mac line endings to \n.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Parse splits raw into lines and returns the trimmed, non-empty ones in
// input order.
func Parse(raw string) []Target {
	targets := []Target{}
	for _, line := range strings.Split(newlines.Replace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		targets = append(targets, Target(line))
	}
	return targets
}

func (t Target) String() string {
	return string(t)
}

// Label returns a filesystem safe name for the target's host, e.g.
// my-shop_example_com for https://my-shop.example.com/path?x=1.
func (t Target) Label() (string, error) {
	u, err := url.Parse(string(t))
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrNoHost, t)
	}
	return strings.ReplaceAll(u.Host, ".", "_"), nil
}

// Origin returns scheme://host of the target. If the target cannot be
// parsed the target itself without trailing slashes is returned.
func (t Target) Origin() string {
	u, err := url.Parse(string(t))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimRight(string(t), "/")
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host)
}

// ResolveLink turns a discovered href into an absolute URL. Absolute hrefs
// are returned unchanged, everything else is appended to the target's
// origin.
func (t Target) ResolveLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		scheme := "https"
		if u, err := url.Parse(string(t)); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		return scheme + ":" + href
	}
	baseURL := t.Origin()
	if !strings.HasPrefix(href, "/") {
		baseURL = baseURL + "/"
	}
	return baseURL + href
}
