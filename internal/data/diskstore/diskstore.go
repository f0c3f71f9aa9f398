// Package diskstore implements kv.KV with one file per key using diskv.
package diskstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"github.com/colonyops/casereview/internal/core/kv"
)

// envelope is the on-disk shape of one entry.
type envelope struct {
	Value     string `json:"v"`
	ExpiresAt int64  `json:"exp,omitempty"` // unix nanoseconds, 0 = never
}

// Store is a diskv-backed kv.KV. Keys are base64url encoded into file names
// so arbitrary case ids are safe on every filesystem.
type Store struct {
	d   *diskv.Diskv
	now func() time.Time
}

var (
	_ kv.KV      = (*Store)(nil)
	_ kv.Sweeper = (*Store)(nil)
)

// New opens (creating if needed) a store rooted at basePath. cacheSize bounds
// diskv's in-memory read cache in bytes.
func New(basePath string, cacheSize uint64) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      cacheSize,
		}),
		now: time.Now,
	}
}

func keyToPath(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: base64.RawURLEncoding.EncodeToString([]byte(key)),
	}
}

func pathToKey(pk *diskv.PathKey) string {
	b, err := base64.RawURLEncoding.DecodeString(pk.FileName)
	if err != nil {
		return ""
	}
	return string(b)
}

func (s *Store) read(key string) (envelope, error) {
	var env envelope
	data, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return env, kv.ErrNotFound
		}
		return env, err
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("decode entry: %w", err)
	}
	return env, nil
}

func (s *Store) expired(env envelope) bool {
	return env.ExpiresAt != 0 && env.ExpiresAt < s.now().UnixNano()
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	env, err := s.read(key)
	if err != nil {
		return "", fmt.Errorf("disk get %q: %w", key, err)
	}
	if s.expired(env) {
		_ = s.d.Erase(key)
		return "", fmt.Errorf("disk get %q: %w", key, kv.ErrNotFound)
	}
	return env.Value, nil
}

func (s *Store) Set(_ context.Context, key string, value string) error {
	return s.write(key, envelope{Value: value})
}

func (s *Store) SetTTL(_ context.Context, key string, value string, ttl time.Duration) error {
	return s.write(key, envelope{Value: value, ExpiresAt: s.now().Add(ttl).UnixNano()})
}

func (s *Store) write(key string, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("disk set %q marshal: %w", key, err)
	}
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("disk set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("disk delete %q: %w", key, err)
	}
	return nil
}

// Take reads then erases. It is not atomic across processes; the review
// screen is the only consumer of a handoff.
func (s *Store) Take(ctx context.Context, key string) (string, error) {
	env, err := s.read(key)
	if err != nil {
		return "", fmt.Errorf("disk take %q: %w", key, err)
	}
	if err := s.Delete(ctx, key); err != nil {
		return "", err
	}
	if s.expired(env) {
		return "", fmt.Errorf("disk take %q: %w", key, kv.ErrNotFound)
	}
	return env.Value, nil
}

func (s *Store) ListKeys(ctx context.Context) ([]string, error) {
	var keys []string
	for key := range s.d.Keys(ctx.Done()) {
		if key == "" {
			continue
		}
		env, err := s.read(key)
		if err != nil || s.expired(env) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) SweepExpired(ctx context.Context) error {
	for key := range s.d.Keys(ctx.Done()) {
		env, err := s.read(key)
		if err != nil {
			continue
		}
		if s.expired(env) {
			if err := s.d.Erase(key); err != nil {
				return fmt.Errorf("disk sweep %q: %w", key, err)
			}
		}
	}
	return nil
}
