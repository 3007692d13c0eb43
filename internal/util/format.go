package util

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// previewLength bounds message previews returned by list and search views.
const previewLength = 300

// FormatBytes renders a byte count for humans ("1.2 MB").
func FormatBytes(n uint64) string {
	return humanize.Bytes(n)
}

// Preview truncates body text to the standard preview length.
func Preview(s string) string {
	return TruncateBody(s, previewLength)
}

// TruncateBody shortens s to at most max characters plus an ellipsis marker.
// When a space falls within the last fifth of the truncation window the cut
// happens there instead of mid-word.
func TruncateBody(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := runes[:max]
	if idx := lastSpace(cut); idx >= max-max/5 {
		cut = cut[:idx]
	}
	return strings.TrimRight(string(cut), " \t\n") + "..."
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		switch runes[i] {
		case ' ', '\t', '\n':
			return i
		}
	}
	return -1
}
