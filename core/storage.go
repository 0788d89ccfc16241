package core

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Storage is a flat string key/value region. The durable region holds the
// user collection; each browser context gets its own session region.
type Storage interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key; removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Swapper is implemented by regions that can replace a value atomically.
// CompareAndSwap writes next only when the current value equals prev, where
// prev == "" means the key must be absent. It reports whether the write happened.
type Swapper interface {
	CompareAndSwap(ctx context.Context, key, prev, next string) (bool, error)
}

// Storage drivers accepted by OpenStorage.
const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// OpenStorage builds the durable region selected by cfg.StorageDriver.
// The returned func releases the underlying connections.
func OpenStorage(ctx context.Context, cfg Config) (Storage, func(), error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case StorageDriverMemory:
		log.Printf("using in-memory storage; accounts are lost on restart")
		return NewMemoryStorage(), func() {}, nil
	case StorageDriverRedis:
		client, err := NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisStorage(client, cfg.RedisKeyPrefix), func() { _ = client.Close() }, nil
	case StorageDriverPostgres:
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return NewPgStorage(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
