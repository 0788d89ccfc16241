package core

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
	PasswordMinLength = 8
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationResult is the outcome of a single field check.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Err returns nil for a valid result and a *FieldError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &FieldError{Field: r.Field, Message: r.Message}
}

func valid(field string) ValidationResult {
	return ValidationResult{Valid: true, Field: field}
}

func invalid(field, msg string) ValidationResult {
	return ValidationResult{Field: field, Message: msg}
}

// ValidateUsername checks emptiness, length in [3,20] and the [a-zA-Z0-9_-] charset.
func ValidateUsername(s string) ValidationResult {
	if strings.TrimSpace(s) == "" {
		return invalid("username", "El usuario no puede estar vacío")
	}
	if n := formLength(s); n < UsernameMinLength || n > UsernameMaxLength {
		return invalid("username", "El usuario debe tener entre 3 y 20 caracteres")
	}
	if !usernamePattern.MatchString(s) {
		return invalid("username", "El usuario solo puede contener letras, números, guiones y guiones bajos")
	}
	return valid("username")
}

// formLength counts UTF-16 code units, the length the site's form scripts see.
func formLength(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// ValidateEmail is a permissive local@domain.tld check, not RFC 5322.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidatePassword requires 8+ characters, a digit and an uppercase letter.
func ValidatePassword(s string) ValidationResult {
	if formLength(s) < PasswordMinLength {
		return invalid("password", "La contraseña debe tener mínimo 8 caracteres")
	}
	if !strings.ContainsAny(s, "0123456789") {
		return invalid("password", "La contraseña debe contener al menos un número")
	}
	if !strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return invalid("password", "La contraseña debe contener al menos una letra mayúscula")
	}
	return valid("password")
}
