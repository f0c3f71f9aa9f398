package stores

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/colonyops/casereview/internal/core/kv"
	pkgkv "github.com/colonyops/casereview/pkg/kv"
)

type memEntry struct {
	value     string
	expiresAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && e.expiresAt.Before(now)
}

// MemStore implements kv.KV in process memory. It backs the per-visit
// handoff storage and the "memory" storage backend.
type MemStore struct {
	data *pkgkv.Store[string, memEntry]
	now  func() time.Time
}

var (
	_ kv.KV      = (*MemStore)(nil)
	_ kv.Sweeper = (*MemStore)(nil)
)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: pkgkv.New[string, memEntry](), now: time.Now}
}

func (s *MemStore) Get(_ context.Context, key string) (string, error) {
	e, ok := s.data.Get(key)
	if !ok || e.expired(s.now()) {
		return "", fmt.Errorf("mem get %q: %w", key, kv.ErrNotFound)
	}
	return e.value, nil
}

func (s *MemStore) Set(_ context.Context, key string, value string) error {
	s.data.Set(key, memEntry{value: value})
	return nil
}

func (s *MemStore) SetTTL(_ context.Context, key string, value string, ttl time.Duration) error {
	s.data.Set(key, memEntry{value: value, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemStore) Delete(_ context.Context, key string) error {
	s.data.Delete(key)
	return nil
}

func (s *MemStore) Take(_ context.Context, key string) (string, error) {
	e, ok := s.data.Take(key)
	if !ok || e.expired(s.now()) {
		return "", fmt.Errorf("mem take %q: %w", key, kv.ErrNotFound)
	}
	return e.value, nil
}

func (s *MemStore) ListKeys(_ context.Context) ([]string, error) {
	now := s.now()
	keys := make([]string, 0, s.data.Len())
	for _, k := range s.data.Keys() {
		if e, ok := s.data.Get(k); ok && !e.expired(now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemStore) SweepExpired(_ context.Context) error {
	now := s.now()
	s.data.DeleteFunc(func(_ string, e memEntry) bool { return e.expired(now) })
	return nil
}
