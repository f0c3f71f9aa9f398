package stores_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/casereview/internal/core/kv"
	"github.com/colonyops/casereview/internal/data/db"
	"github.com/colonyops/casereview/internal/data/diskstore"
	"github.com/colonyops/casereview/internal/data/stores"
)

type backend struct {
	name string
	open func(t *testing.T) kv.KV
}

func backends() []backend {
	return []backend{
		{
			name: "sqlite",
			open: func(t *testing.T) kv.KV {
				t.Helper()
				database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
				require.NoError(t, err)
				t.Cleanup(func() { _ = database.Close() })
				return stores.NewKVStore(database)
			},
		},
		{
			name: "disk",
			open: func(t *testing.T) kv.KV {
				t.Helper()
				return diskstore.New(filepath.Join(t.TempDir(), "kv"), 1<<20)
			},
		},
		{
			name: "memory",
			open: func(t *testing.T) kv.KV {
				t.Helper()
				return stores.NewMemStore()
			},
		},
	}
}

func TestKV_Contract(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("set and get", func(t *testing.T) {
				ctx := context.Background()
				store := b.open(t)

				require.NoError(t, store.Set(ctx, "metadata_C1", `{"status":"Pending"}`))

				got, err := store.Get(ctx, "metadata_C1")
				require.NoError(t, err)
				assert.Equal(t, `{"status":"Pending"}`, got)
			})

			t.Run("get missing", func(t *testing.T) {
				store := b.open(t)

				_, err := store.Get(context.Background(), "nope")
				assert.ErrorIs(t, err, kv.ErrNotFound)
			})

			t.Run("overwrite", func(t *testing.T) {
				ctx := context.Background()
				store := b.open(t)

				require.NoError(t, store.Set(ctx, "key", "first"))
				require.NoError(t, store.Set(ctx, "key", "second"))

				got, err := store.Get(ctx, "key")
				require.NoError(t, err)
				assert.Equal(t, "second", got)
			})

			t.Run("take clears", func(t *testing.T) {
				ctx := context.Background()
				store := b.open(t)

				require.NoError(t, store.Set(ctx, "selectedCase", `{"caseId":"C1"}`))

				got, err := store.Take(ctx, "selectedCase")
				require.NoError(t, err)
				assert.Equal(t, `{"caseId":"C1"}`, got)

				_, err = store.Take(ctx, "selectedCase")
				assert.ErrorIs(t, err, kv.ErrNotFound)
				_, err = store.Get(ctx, "selectedCase")
				assert.ErrorIs(t, err, kv.ErrNotFound)
			})

			t.Run("delete missing is not an error", func(t *testing.T) {
				assert.NoError(t, b.open(t).Delete(context.Background(), "nope"))
			})

			t.Run("expired entries are hidden", func(t *testing.T) {
				ctx := context.Background()
				store := b.open(t)

				require.NoError(t, store.SetTTL(ctx, "gone", "v", -time.Second))
				require.NoError(t, store.SetTTL(ctx, "kept", "v", time.Hour))

				_, err := store.Get(ctx, "gone")
				assert.ErrorIs(t, err, kv.ErrNotFound)

				keys, err := store.ListKeys(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"kept"}, keys)
			})

			t.Run("sweep", func(t *testing.T) {
				ctx := context.Background()
				store := b.open(t)

				require.NoError(t, store.SetTTL(ctx, "gone", "v", -time.Second))
				require.NoError(t, store.Set(ctx, "kept", "v"))

				sweeper, ok := store.(kv.Sweeper)
				require.True(t, ok)
				require.NoError(t, sweeper.SweepExpired(ctx))

				keys, err := store.ListKeys(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"kept"}, keys)
			})

			t.Run("keys sorted", func(t *testing.T) {
				ctx := context.Background()
				store := b.open(t)

				for _, k := range []string{"metadata_b", "patientRecords", "metadata_a"} {
					require.NoError(t, store.Set(ctx, k, "{}"))
				}

				keys, err := store.ListKeys(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"metadata_a", "metadata_b", "patientRecords"}, keys)
			})
		})
	}
}

func TestTypedKV_ScopedPrefix(t *testing.T) {
	ctx := context.Background()
	store := stores.NewMemStore()

	type payload struct {
		Name string `json:"name"`
	}
	typed := kv.Scoped[payload](store, "metadata_")

	require.NoError(t, typed.Set(ctx, "C1", payload{Name: "knee"}))

	raw, err := store.Get(ctx, "metadata_C1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"knee"}`, raw)

	keys, err := typed.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C1"}, keys)
}

func TestTypedKV_DecodeFailureIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	store := stores.NewMemStore()
	require.NoError(t, store.Set(ctx, "metadata_C1", "{not json"))

	_, err := kv.Scoped[map[string]any](store, "metadata_").Get(ctx, "C1")
	require.Error(t, err)
	assert.False(t, kv.IsNotFound(err))
}

func TestTypedKV_TakeRemovesUndecodable(t *testing.T) {
	ctx := context.Background()
	store := stores.NewMemStore()
	require.NoError(t, store.Set(ctx, "selectedCase", "garbage"))

	_, err := kv.Scoped[map[string]any](store, "").Take(ctx, "selectedCase")
	require.Error(t, err)

	_, err = store.Get(ctx, "selectedCase")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}
