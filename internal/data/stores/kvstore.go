// Package stores holds the kv.KV implementations that back case records and
// selection handoffs.
package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/casereview/internal/core/kv"
	"github.com/colonyops/casereview/internal/data/db"
)

// KVStore implements kv.KV using SQLite.
type KVStore struct {
	db  *db.DB
	now func() time.Time
}

var (
	_ kv.KV      = (*KVStore)(nil)
	_ kv.Sweeper = (*KVStore)(nil)
)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

// Get retrieves a value by key.
// Expired entries are deleted in the same transaction and treated as missing.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var (
		value   string
		expired bool
	)
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		row, err := q.KVGet(ctx, key)
		if err != nil {
			return notFound("kv get", key, err)
		}
		if expired = s.isExpired(row); expired {
			return q.KVDelete(ctx, key)
		}
		value = row.Value
		return nil
	})
	if err != nil {
		return "", err
	}
	if expired {
		return "", fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	return value, nil
}

// Set stores a value with no expiry.
func (s *KVStore) Set(ctx context.Context, key string, value string) error {
	return s.set(ctx, key, value, sql.NullInt64{})
}

// SetTTL stores a value that expires after the given duration.
func (s *KVStore) SetTTL(ctx context.Context, key string, value string, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl).UnixNano()
	return s.set(ctx, key, value, sql.NullInt64{Int64: expiresAt, Valid: true})
}

// Delete removes a key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Queries().KVDelete(ctx, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Take deletes the row and returns its value in one statement, so two
// readers can never both observe the same entry.
func (s *KVStore) Take(ctx context.Context, key string) (string, error) {
	row, err := s.db.Queries().KVTake(ctx, key)
	if err != nil {
		return "", notFound("kv take", key, err)
	}
	if s.isExpired(row) {
		return "", fmt.Errorf("kv take %q: %w", key, kv.ErrNotFound)
	}
	return row.Value, nil
}

// ListKeys returns all non-expired keys in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	now := sql.NullInt64{Int64: s.now().UnixNano(), Valid: true}
	keys, err := s.db.Queries().KVListKeys(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	return keys, nil
}

// SweepExpired deletes all entries whose TTL has passed.
func (s *KVStore) SweepExpired(ctx context.Context) error {
	now := sql.NullInt64{Int64: s.now().UnixNano(), Valid: true}
	if err := s.db.Queries().KVSweepExpired(ctx, now); err != nil {
		return fmt.Errorf("kv sweep expired: %w", err)
	}
	return nil
}

func (s *KVStore) set(ctx context.Context, key string, value string, expiresAt sql.NullInt64) error {
	now := s.now().UnixNano()
	if err := s.db.Queries().KVSet(ctx, db.KVSetParams{
		Key:       key,
		Value:     value,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}

	return nil
}

func (s *KVStore) isExpired(row db.KvStore) bool {
	return row.ExpiresAt.Valid && row.ExpiresAt.Int64 < s.now().UnixNano()
}

func notFound(op, key string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", op, key, kv.ErrNotFound)
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}
