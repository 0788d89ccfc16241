package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// maxSwapAttempts bounds the optimistic write loop in CreateUser.
const maxSwapAttempts = 5

// UserRepository defines the user collection capability used by handlers.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]UserRecord, error)
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByUsername(ctx context.Context, username string) (*UserRecord, error)
	CreateUser(ctx context.Context, username, email, password string) (*UserRecord, error)
}

var _ UserRepository = (*UserStore)(nil)

// UserStore keeps the whole user collection as one JSON array under
// UsersStorageKey. Lookups use lowercase indexes rebuilt only when the
// persisted payload changes.
type UserStore struct {
	storage Storage
	hasher  PasswordHasher
	ids     *IDGenerator
	now     func() time.Time

	mu    sync.Mutex
	raw   string
	index *userIndex
}

type userIndex struct {
	users      []UserRecord
	byUsername map[string]int
	byEmail    map[string]int
	maxID      int64
}

func newUserIndex(users []UserRecord) *userIndex {
	idx := &userIndex{
		users:      users,
		byUsername: make(map[string]int, len(users)),
		byEmail:    make(map[string]int, len(users)),
	}
	for i, u := range users {
		// first record wins, matching a front-to-back scan
		if _, ok := idx.byUsername[normalizeKey(u.Username)]; !ok {
			idx.byUsername[normalizeKey(u.Username)] = i
		}
		if _, ok := idx.byEmail[normalizeKey(u.Email)]; !ok {
			idx.byEmail[normalizeKey(u.Email)] = i
		}
		if u.ID > idx.maxID {
			idx.maxID = u.ID
		}
	}
	return idx
}

func (idx *userIndex) lookup(m map[string]int, key string) *UserRecord {
	i, ok := m[normalizeKey(key)]
	if !ok {
		return nil
	}
	u := idx.users[i]
	return &u
}

func NewUserStore(storage Storage, hasher PasswordHasher, now func() time.Time) *UserStore {
	if now == nil {
		now = time.Now
	}
	return &UserStore{
		storage: storage,
		hasher:  hasher,
		ids:     NewIDGenerator(now),
		now:     now,
	}
}

// loadLocked returns the current index and the raw payload it was built from.
func (s *UserStore) loadLocked(ctx context.Context) (*userIndex, string, error) {
	raw, ok, err := s.storage.Get(ctx, UsersStorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("read users: %w", err)
	}
	if !ok {
		raw = ""
	}
	if s.index != nil && raw == s.raw {
		return s.index, raw, nil
	}
	users := []UserRecord{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &users); err != nil {
			return nil, "", fmt.Errorf("decode users: %w", err)
		}
		if users == nil {
			users = []UserRecord{}
		}
	}
	s.raw = raw
	s.index = newUserIndex(users)
	return s.index, raw, nil
}

// ListUsers returns every record in insertion order.
func (s *UserStore) ListUsers(ctx context.Context) ([]UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, _, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(idx.users), nil
}

// FindByEmail matches email case-insensitively; nil when absent.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, _, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	return idx.lookup(idx.byEmail, email), nil
}

// FindByUsername matches username case-insensitively; nil when absent.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, _, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}
	return idx.lookup(idx.byUsername, username), nil
}

// CreateUser appends a new active record after the uniqueness checks and
// persists the whole collection. Username is checked before email.
func (s *UserStore) CreateUser(ctx context.Context, username, email, password string) (*UserRecord, error) {
	return s.create(ctx, username, email, password, false)
}

// CreateAdmin is CreateUser for the operator account; the record carries Admin.
func (s *UserStore) CreateAdmin(ctx context.Context, username, email, password string) (*UserRecord, error) {
	return s.create(ctx, username, email, password, true)
}

func (s *UserStore) create(ctx context.Context, username, email, password string, admin bool) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hash string
	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		idx, raw, err := s.loadLocked(ctx)
		if err != nil {
			return nil, err
		}
		if idx.lookup(idx.byUsername, username) != nil {
			return nil, ErrDuplicateUsername
		}
		if idx.lookup(idx.byEmail, email) != nil {
			return nil, ErrDuplicateEmail
		}
		if hash == "" {
			if hash, err = s.hasher.Hash(password); err != nil {
				var fieldErr *FieldError
				if errors.As(err, &fieldErr) {
					return nil, fieldErr
				}
				return nil, fmt.Errorf("hash password: %w", err)
			}
		}

		rec := UserRecord{
			ID:           s.ids.Next(idx.maxID),
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			RegisteredAt: s.now().UTC(),
			Active:       true,
			Admin:        admin,
		}
		users := append(slices.Clone(idx.users), rec)
		data, err := json.Marshal(users)
		if err != nil {
			return nil, fmt.Errorf("encode users: %w", err)
		}

		swapper, ok := s.storage.(Swapper)
		if !ok {
			if err := s.storage.Set(ctx, UsersStorageKey, string(data)); err != nil {
				return nil, fmt.Errorf("write users: %w", err)
			}
		} else {
			swapped, err := swapper.CompareAndSwap(ctx, UsersStorageKey, raw, string(data))
			if err != nil {
				return nil, fmt.Errorf("write users: %w", err)
			}
			if !swapped {
				continue
			}
		}
		s.raw = string(data)
		s.index = newUserIndex(users)
		return &rec, nil
	}
	return nil, ErrStorageConflict
}
