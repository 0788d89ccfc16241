package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool with conservative defaults.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// PgStorage implements Storage and Swapper over the kv_storage table.
type PgStorage struct {
	db *pgxpool.Pool
}

func NewPgStorage(db *pgxpool.Pool) *PgStorage {
	return &PgStorage{db: db}
}

func (s *PgStorage) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM kv_storage WHERE key=$1`
	var v string
	if err := s.db.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *PgStorage) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO kv_storage (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`
	_, err := s.db.Exec(ctx, q, key, value)
	return err
}

func (s *PgStorage) Remove(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM kv_storage WHERE key=$1`, key)
	return err
}

func (s *PgStorage) CompareAndSwap(ctx context.Context, key, prev, next string) (bool, error) {
	if prev == "" {
		tag, err := s.db.Exec(ctx, `INSERT INTO kv_storage (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`, key, next)
		if err != nil {
			return false, err
		}
		return tag.RowsAffected() == 1, nil
	}
	tag, err := s.db.Exec(ctx, `UPDATE kv_storage SET value=$3, updated_at=now() WHERE key=$1 AND value=$2`, key, prev, next)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
