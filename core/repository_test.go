package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestUserStore(t *testing.T, storage Storage) *UserStore {
	t.Helper()
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return NewUserStore(storage, NewBcryptHasher(bcrypt.MinCost), func() time.Time { return testNow })
}

func TestUserStoreCreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := newTestUserStore(t, nil)

	u, err := store.CreateUser(ctx, "alice", "alice@example.com", "Passw0rd")
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if !u.Active || u.ID == 0 || !u.RegisteredAt.Equal(testNow) {
		t.Fatalf("unexpected record: %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "Passw0rd" {
		t.Fatalf("password not hashed: %q", u.PasswordHash)
	}

	byName, err := store.FindByUsername(ctx, "ALICE")
	if err != nil || byName == nil || byName.ID != u.ID {
		t.Fatalf("FindByUsername = %+v, %v", byName, err)
	}
	byEmail, err := store.FindByEmail(ctx, "Alice@Example.COM")
	if err != nil || byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("FindByEmail = %+v, %v", byEmail, err)
	}

	missing, err := store.FindByEmail(ctx, "bob@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected absent, got %+v, %v", missing, err)
	}
}

func TestUserStoreUniquenessIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store := newTestUserStore(t, nil)

	if _, err := store.CreateUser(ctx, "admin", "admin@example.com", "Passw0rd"); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if _, err := store.CreateUser(ctx, "Admin", "other@example.com", "Passw0rd"); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if _, err := store.CreateUser(ctx, "other", "ADMIN@example.com", "Passw0rd"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	// username is checked first
	if _, err := store.CreateUser(ctx, "ADMIN", "Admin@Example.com", "Passw0rd"); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername first, got %v", err)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("failed creates must not persist; got %d users", len(users))
	}
}

func TestUserStoreListOrderAndIDs(t *testing.T) {
	ctx := context.Background()
	store := newTestUserStore(t, nil)

	empty, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}

	names := []string{"carol", "alice", "bob"}
	for _, n := range names {
		if _, err := store.CreateUser(ctx, n, n+"@example.com", "Passw0rd"); err != nil {
			t.Fatalf("CreateUser(%s) error: %v", n, err)
		}
	}
	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if len(users) != len(names) {
		t.Fatalf("got %d users, want %d", len(users), len(names))
	}
	for i, u := range users {
		if u.Username != names[i] {
			t.Fatalf("users[%d] = %s, want %s", i, u.Username, names[i])
		}
		// the clock is frozen, ids must still increase
		if i > 0 && u.ID <= users[i-1].ID {
			t.Fatalf("ids not increasing: %d then %d", users[i-1].ID, u.ID)
		}
	}
}

func TestUserStorePersistsWholeCollection(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := newTestUserStore(t, storage)

	if _, err := store.CreateUser(ctx, "alice", "alice@example.com", "Passw0rd"); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	raw, ok, _ := storage.Get(ctx, UsersStorageKey)
	if !ok {
		t.Fatalf("key %s not written", UsersStorageKey)
	}
	if strings.Contains(raw, "Passw0rd") {
		t.Fatalf("plain-text password persisted: %s", raw)
	}
	var persisted []map[string]any
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("payload is not a JSON array: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("got %d records", len(persisted))
	}
	for _, k := range []string{"id", "username", "email", "passwordHash", "registeredAt", "active"} {
		if _, ok := persisted[0][k]; !ok {
			t.Fatalf("persisted record misses %q: %v", k, persisted[0])
		}
	}

	// a second store over the same region sees the record
	other := newTestUserStore(t, storage)
	u, err := other.FindByUsername(ctx, "alice")
	if err != nil || u == nil {
		t.Fatalf("record not visible to another store: %v", err)
	}
}

func TestUserStoreSeesExternalWrites(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	a := newTestUserStore(t, storage)
	b := newTestUserStore(t, storage)

	if _, err := a.ListUsers(ctx); err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if _, err := b.CreateUser(ctx, "bob", "bob@example.com", "Passw0rd"); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if _, err := a.CreateUser(ctx, "BOB", "bob2@example.com", "Passw0rd"); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("stale index used; got %v", err)
	}
}

func TestUserStoreCorruptPayload(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	_ = storage.Set(ctx, UsersStorageKey, "{not json")
	store := newTestUserStore(t, storage)

	if _, err := store.ListUsers(ctx); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, _, ok := ErrorCode(func() error { _, err := store.ListUsers(ctx); return err }()); ok {
		t.Fatalf("decode error must not be classified as a domain error")
	}
}

func TestUserStorePasswordTooLong(t *testing.T) {
	store := newTestUserStore(t, nil)
	_, err := store.CreateUser(context.Background(), "alice", "alice@example.com", strings.Repeat("A1", 40))
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "password" {
		t.Fatalf("expected password FieldError, got %v", err)
	}
}

// racingStorage lets another writer slip in before the first n swaps.
type racingStorage struct {
	*MemoryStorage
	races int
	seq   int
}

func (r *racingStorage) CompareAndSwap(ctx context.Context, key, prev, next string) (bool, error) {
	if r.races > 0 {
		r.races--
		r.seq++
		var users []UserRecord
		if cur, ok, _ := r.MemoryStorage.Get(ctx, key); ok {
			_ = json.Unmarshal([]byte(cur), &users)
		}
		name := "racer" + strings.Repeat("x", r.seq)
		users = append(users, UserRecord{ID: int64(r.seq), Username: name, Email: name + "@example.com", Active: true})
		b, _ := json.Marshal(users)
		_ = r.MemoryStorage.Set(ctx, key, string(b))
	}
	return r.MemoryStorage.CompareAndSwap(ctx, key, prev, next)
}

func TestUserStoreRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	storage := &racingStorage{MemoryStorage: NewMemoryStorage(), races: 2}
	store := newTestUserStore(t, storage)

	u, err := store.CreateUser(ctx, "alice", "alice@example.com", "Passw0rd")
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected racers and alice to survive, got %d users", len(users))
	}
	if users[2].ID != u.ID || u.ID <= users[1].ID {
		t.Fatalf("alice must be appended last with the largest id: %+v", users)
	}
}

func TestUserStoreGivesUpAfterRepeatedConflicts(t *testing.T) {
	storage := &racingStorage{MemoryStorage: NewMemoryStorage(), races: maxSwapAttempts}
	store := newTestUserStore(t, storage)

	_, err := store.CreateUser(context.Background(), "alice", "alice@example.com", "Passw0rd")
	if !errors.Is(err, ErrStorageConflict) {
		t.Fatalf("expected ErrStorageConflict, got %v", err)
	}
}

func TestIDGeneratorMonotonic(t *testing.T) {
	now := time.UnixMilli(1000)
	g := NewIDGenerator(func() time.Time { return now })
	if id := g.Next(0); id != 1000 {
		t.Fatalf("first id = %d, want 1000", id)
	}
	if id := g.Next(0); id != 1001 {
		t.Fatalf("same millisecond id = %d, want 1001", id)
	}
	if id := g.Next(5000); id != 5001 {
		t.Fatalf("id below floor: %d", id)
	}
	now = time.UnixMilli(2000)
	if id := g.Next(0); id != 5002 {
		t.Fatalf("clock behind last id; got %d, want 5002", id)
	}
}
