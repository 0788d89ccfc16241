package core

import (
	"context"
	"strings"
	"sync"
)

// AuthService combines the user store with credential checks and the
// account-creation form rules.
type AuthService struct {
	users      *UserStore
	hasher     PasswordHasher
	adminEmail string

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService builds the service. adminEmail and the admin username are
// reserved: public registration reports them as taken.
func NewAuthService(users *UserStore, hasher PasswordHasher, adminEmail string) *AuthService {
	return &AuthService{users: users, hasher: hasher, adminEmail: adminEmail}
}

// VerifyLogin checks email/password against the stored hash. Unknown email and
// wrong password both yield ErrInvalidCredentials. On success the caller is
// expected to start the session.
func (s *AuthService) VerifyLogin(ctx context.Context, email, password string) (*UserRecord, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// same bcrypt work as a real mismatch
		_ = s.hasher.Compare(s.dummy(), password)
		return nil, ErrInvalidCredentials
	}
	if s.hasher.Compare(u.PasswordHash, password) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("Stergy-dummy-0")
	})
	return s.dummyHash
}

// RegisterInput is the account-creation form.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

// Register validates the form in page order, then creates the account.
// Username and email are trimmed; the password is taken verbatim.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*UserRecord, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if err := ValidateUsername(username).Err(); err != nil {
		return nil, err
	}
	if !ValidateEmail(email) {
		return nil, &FieldError{Field: "email", Message: "Por favor ingresa un correo electrónico válido"}
	}
	if err := ValidatePassword(in.Password).Err(); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, &FieldError{Field: "confirmPassword", Message: "Las contraseñas no coinciden"}
	}
	if !in.AcceptTerms {
		return nil, &FieldError{Field: "terms", Message: "Debes aceptar los términos y condiciones"}
	}
	if normalizeKey(username) == adminUsername {
		return nil, ErrDuplicateUsername
	}
	if s.adminEmail != "" && strings.EqualFold(email, s.adminEmail) {
		return nil, ErrDuplicateEmail
	}
	return s.users.CreateUser(ctx, username, email, in.Password)
}
