// internal/app/system/inputval/inputval.go

// Package inputval sanitizes and validates free-text input arriving at the
// API boundary before it reaches the workflow layer.
package inputval

import (
	"net/mail"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips all HTML; API fields are plain text.
var strict = bluemonday.StrictPolicy()

// Clean strips HTML markup and trims surrounding whitespace. Free-text
// fields (names, notes, reasons) pass through here on every write.
func Clean(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// CleanAll applies Clean to every element.
func CleanAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := Clean(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether the string parses as a bare RFC 5322
// address. Display-name forms ("Name <a@b.c>") are rejected.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
