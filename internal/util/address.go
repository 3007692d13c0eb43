package util

import (
	"net/mail"
	"strings"
)

// ExtractEmailAddress pulls the bare address out of a display-name form such
// as "John Doe <john@example.com>". A bare address passes through trimmed.
func ExtractEmailAddress(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(s); err == nil {
		return addr.Address
	}
	// Fallback for headers net/mail rejects (unquoted display names with
	// special characters, stray encoding).
	if open := strings.LastIndex(s, "<"); open >= 0 {
		if close := strings.Index(s[open:], ">"); close > 0 {
			return strings.TrimSpace(s[open+1 : open+close])
		}
	}
	return s
}

// IsValidEmail reports whether s parses as a single address with a dotted
// domain part.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 || at == len(addr.Address)-1 {
		return false
	}
	return strings.Contains(addr.Address[at+1:], ".")
}

// ParseEmails splits a comma-separated recipient list into bare addresses,
// silently dropping entries that do not validate.
func ParseEmails(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		addr := ExtractEmailAddress(p)
		if IsValidEmail(addr) {
			out = append(out, addr)
		}
	}
	return out
}
