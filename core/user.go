package core

import (
	"strings"
	"time"
)

// Storage keys shared with the site's pages.
const (
	UsersStorageKey    = "usuarios_stergy"
	SessionUserKey     = "usuario_logueado"
	RememberedEmailKey = "email_guardado"
)

// UserRecord is one registered account as persisted in the durable region.
type UserRecord struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
	Active       bool      `json:"active"`
	// Admin is only ever set by BootstrapAdmin.
	Admin bool `json:"admin,omitempty"`
}

// Public returns a copy without the password hash, safe to hand to the
// session region or to clients.
func (u UserRecord) Public() UserRecord {
	u.PasswordHash = ""
	return u
}

func normalizeKey(s string) string {
	return strings.ToLower(s)
}
