package utils

import (
	"fmt"
	"strings"
)

// ShortenString cuts s to l bytes and marks the cut with an ellipsis. An l
// of 0 leaves s untouched.
func ShortenString(s string, l int) string {
	if len(s) > l && l != 0 {
		return fmt.Sprintf("%s...", s[:l])
	}
	return s
}

// SingleLine collapses all whitespace runs, including newlines, in s into
// single spaces so that s fits into one log line.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
