package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TypedKV provides JSON-encoded access to a KV store for a specific type T.
type TypedKV[T any] struct {
	store  KV
	prefix string
}

// Scoped returns a TypedKV[T] that prefixes every key with prefix verbatim,
// e.g. Scoped[T](store, "metadata_") stores "C1" under "metadata_C1".
func Scoped[T any](store KV, prefix string) *TypedKV[T] {
	return &TypedKV[T]{
		store:  store,
		prefix: prefix,
	}
}

// Key returns the full storage key for k.
func (t *TypedKV[T]) Key(k string) string {
	return t.prefix + k
}

// Get retrieves and deserializes a value by key. A decode failure is
// returned as an error distinct from ErrNotFound.
func (t *TypedKV[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	raw, err := t.store.Get(ctx, t.Key(key))
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, fmt.Errorf("decode %q: %w", t.Key(key), err)
	}
	return v, nil
}

// Set stores a value with no expiry.
func (t *TypedKV[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", t.Key(key), err)
	}
	return t.store.Set(ctx, t.Key(key), string(data))
}

// SetTTL stores a value that expires after the given duration.
func (t *TypedKV[T]) SetTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", t.Key(key), err)
	}
	return t.store.SetTTL(ctx, t.Key(key), string(data), ttl)
}

// Take retrieves, deserializes, and removes a value. The key is removed even
// when the stored payload fails to decode.
func (t *TypedKV[T]) Take(ctx context.Context, key string) (T, error) {
	var v T
	raw, err := t.store.Take(ctx, t.Key(key))
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, fmt.Errorf("decode %q: %w", t.Key(key), err)
	}
	return v, nil
}

// Delete removes a key.
func (t *TypedKV[T]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.Key(key))
}

// Keys lists the unprefixed keys in this scope.
func (t *TypedKV[T]) Keys(ctx context.Context) ([]string, error) {
	all, err := t.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, t.prefix); ok && rest != "" {
			keys = append(keys, rest)
		}
	}
	return keys, nil
}
