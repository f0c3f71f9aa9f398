package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestLoadSteps_PairedAndSorted(t *testing.T) {
	steps, err := loadSteps()
	require.NoError(t, err)
	require.NotEmpty(t, steps)

	for i, s := range steps {
		assert.Equal(t, i+1, s.Version)
		assert.NotEmpty(t, s.Up)
		assert.NotEmpty(t, s.Down)
	}
}

func TestParseStepFile(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		version   int
		migration string
		direction string
		wantErr   bool
	}{
		{name: "up", input: "0001_kv_store.up.sql", version: 1, migration: "kv_store", direction: "up"},
		{name: "down", input: "0012_add_index.down.sql", version: 12, migration: "add_index", direction: "down"},
		{name: "no direction", input: "0001_kv_store.sql", wantErr: true},
		{name: "no name", input: "0001.up.sql", wantErr: true},
		{name: "zero version", input: "0000_init.up.sql", wantErr: true},
		{name: "non numeric", input: "abc_init.up.sql", wantErr: true},
		{name: "upper case name", input: "0002_AddIndex.up.sql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, name, direction, err := parseStepFile(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.migration, name)
			assert.Equal(t, tt.direction, direction)
		})
	}
}

func TestMigrateUp_FreshDB(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	var count int
	require.NoError(t, database.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))

	steps, err := loadSteps()
	require.NoError(t, err)
	assert.Equal(t, len(steps), count)

	_, err = database.Conn().ExecContext(ctx, "SELECT 1 FROM kv_store LIMIT 0")
	require.NoError(t, err, "kv_store table should exist")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, migrateUp(ctx, database.Conn()))
}

func TestMigrateDown_RevertsLatest(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, MigrateDown(ctx, database.Conn(), 1))

	_, err := database.Conn().ExecContext(ctx, "SELECT 1 FROM kv_store LIMIT 0")
	require.Error(t, err, "kv_store table should be dropped")

	assert.Error(t, MigrateDown(ctx, database.Conn(), 1), "nothing left to revert")
	assert.Error(t, MigrateDown(ctx, database.Conn(), 0))
}
