// Package kv defines the durable key/value contract that case records and
// selection handoffs are persisted through.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is wrapped by Get and Take when a key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// Entry represents a raw KV entry with metadata.
type Entry struct {
	Key       string
	Value     string
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

// KV is the interface for a string-valued key/value store.
// Get on a missing key returns an error wrapping ErrNotFound.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	SetTTL(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Take returns the value and removes the key in the same operation.
	Take(ctx context.Context, key string) (string, error)
	ListKeys(ctx context.Context) ([]string, error)
}

// Sweeper is implemented by stores that need expired entries removed eagerly.
type Sweeper interface {
	SweepExpired(ctx context.Context) error
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
