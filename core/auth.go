package core

import (
	"context"
	"errors"
)

// AuthError is a recoverable account failure shown to the user as-is.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// FieldError reports a form field that failed its format check.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

const codeInvalidFieldFormat = "INVALID_FIELD_FORMAT"

var (
	ErrDuplicateUsername = &AuthError{Code: "DUPLICATE_USERNAME", Message: "El nombre de usuario ya está registrado"}
	ErrDuplicateEmail    = &AuthError{Code: "DUPLICATE_EMAIL", Message: "El correo electrónico ya está registrado"}
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = &AuthError{Code: "INVALID_CREDENTIALS", Message: "Correo electrónico o contraseña incorrectos"}
	ErrMissingCredentials = &AuthError{Code: "VALIDATION_ERROR", Message: "Por favor ingresa tu correo y contraseña"}

	// ErrStorageConflict is returned when concurrent writers kept replacing
	// the user collection until the retry budget ran out.
	ErrStorageConflict = errors.New("user collection changed concurrently")

	errPasswordTooLong = &FieldError{Field: "password", Message: "La contraseña no puede superar 72 bytes"}
)

// Messages returned with successful operations.
const (
	MsgAccountCreated = "Cuenta creada exitosamente"
	MsgLoginSucceeded = "Inicio de sesión exitoso"
)

// Authenticator verifies a submitted email/password pair.
type Authenticator interface {
	VerifyLogin(ctx context.Context, email, password string) (*UserRecord, error)
}

// Result is the structured outcome handed back to the page.
type Result struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message"`
	User    *UserRecord `json:"user,omitempty"`
}

// Succeeded builds a success Result carrying the public view of u.
func Succeeded(message string, u *UserRecord) Result {
	res := Result{OK: true, Message: message}
	if u != nil {
		pub := u.Public()
		res.User = &pub
	}
	return res
}

// ErrorCode classifies err for API responses and returns the user-facing
// message. ok is false for infrastructure errors that must not be shown.
func ErrorCode(err error) (code, message string, ok bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Code, authErr.Message, true
	}
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return codeInvalidFieldFormat, fieldErr.Message, true
	}
	return "", "", false
}
