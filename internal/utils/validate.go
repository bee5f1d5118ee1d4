package utils

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// ValidPhone reports whether value looks like a phone number.
func ValidPhone(value string) bool {
	return phonePattern.MatchString(value)
}

// ValidEmail does a minimal shape check on an email address.
func ValidEmail(value string) bool {
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 {
		return false
	}
	return !strings.ContainsAny(value, " \t")
}

// CheckPasswordStrength returns a human-readable reason when the
// password fails the policy, or "" when it passes.
func CheckPasswordStrength(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}

	numeric := true
	for _, r := range password {
		if r < '0' || r > '9' {
			numeric = false
			break
		}
	}
	if numeric {
		return "password cannot be entirely numeric"
	}

	return ""
}

// FieldErrors collects per-field validation messages for a request.
type FieldErrors map[string]string

// Add records a message for a field, keeping the first one reported.
func (f FieldErrors) Add(field, message string) {
	if _, ok := f[field]; !ok {
		f[field] = message
	}
}

// Empty reports whether no errors were recorded.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}
