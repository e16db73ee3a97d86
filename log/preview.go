// Package log holds helpers for logging untrusted gateway payloads.
package log

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultPreviewLen limits payload previews to keep logs and error messages short.
const DefaultPreviewLen = 256

// Preview returns a log-safe preview of str.
//
// maxLen is optional and defaults to DefaultPreviewLen.
// Returns:
//   - Original string if it fits and holds only printable characters
//   - Truncated string, ending in "...", if it does not fit
//
// Control characters are replaced with spaces and the cut never splits a UTF-8 sequence.
func Preview(str string, maxLen ...int) string {
	l := DefaultPreviewLen
	if len(maxLen) > 0 {
		l = maxLen[0]
	}
	return sanitize(truncate(str, l))
}

// PreviewBytes is Preview for raw response bodies.
func PreviewBytes(body []byte, maxLen ...int) string {
	l := DefaultPreviewLen
	if len(maxLen) > 0 {
		l = maxLen[0]
	}
	// Only convert what can be shown.
	if len(body) > l+utf8.UTFMax {
		body = body[:l+utf8.UTFMax]
		return sanitize(truncate(string(body), l, true))
	}
	return sanitize(truncate(string(body), l))
}

// truncate cuts str to at most maxLen bytes, on a rune boundary.
// forceEllipsis marks input that was already shortened by the caller.
func truncate(str string, maxLen int, forceEllipsis ...bool) string {
	cut := len(forceEllipsis) > 0 && forceEllipsis[0]
	if len(str) <= maxLen && !cut {
		return str
	}
	if maxLen <= 3 {
		return validPrefix(str, maxLen)
	}
	return validPrefix(str, maxLen-3) + "..."
}

func validPrefix(str string, n int) string {
	if n >= len(str) {
		return str
	}
	for n > 0 && !utf8.RuneStart(str[n]) {
		n--
	}
	return str[:n]
}

func sanitize(str string) string {
	if strings.IndexFunc(str, unicode.IsControl) < 0 {
		return str
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, str)
}
