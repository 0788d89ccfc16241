package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// SessionManager owns the single logged-in slot of one browser context.
// It only stores copies of records handed to it and never touches the user
// collection.
type SessionManager struct {
	region Storage
}

// NewSessionManager binds a manager to the session region of one browser context.
func NewSessionManager(region Storage) *SessionManager {
	return &SessionManager{region: region}
}

// Login stores a copy of u (without its password hash), replacing any prior session.
func (m *SessionManager) Login(ctx context.Context, u UserRecord) error {
	data, err := json.Marshal(u.Public())
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.region.Set(ctx, SessionUserKey, string(data))
}

// CurrentUser returns the session copy, or nil when nobody is logged in.
func (m *SessionManager) CurrentUser(ctx context.Context) (*UserRecord, error) {
	raw, ok, err := m.region.Get(ctx, SessionUserKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var u UserRecord
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &u, nil
}

// Logout clears the slot. Calling it without a session is a no-op.
func (m *SessionManager) Logout(ctx context.Context) error {
	return m.region.Remove(ctx, SessionUserKey)
}

func (m *SessionManager) IsLoggedIn(ctx context.Context) (bool, error) {
	u, err := m.CurrentUser(ctx)
	return u != nil, err
}

// CurrentUsername returns "" when logged out.
func (m *SessionManager) CurrentUsername(ctx context.Context) (string, error) {
	u, err := m.CurrentUser(ctx)
	if err != nil || u == nil {
		return "", err
	}
	return u.Username, nil
}
