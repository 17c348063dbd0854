package utils

import (
	"html"
	"net/mail"
	"strings"
)

// MinPasswordLength is the minimum accepted password length in bytes.
const MinPasswordLength = 6

// SanitizeInput trims surrounding whitespace and escapes HTML special
// characters in a free-text field. Passwords must never pass through here:
// they have to stay byte-exact for the hash comparison.
func SanitizeInput(value string) string {
	return html.EscapeString(strings.TrimSpace(value))
}

// NormalizeEmail lowercases and trims an email address so differently-cased
// spellings store as one canonical value.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail checks address syntax. Only bare addresses are accepted,
// not the "Name <addr>" form.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
