package casereview_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/casereview/internal/casereview"
	"github.com/colonyops/casereview/internal/core/caserecord"
	"github.com/colonyops/casereview/internal/core/config"
	"github.com/colonyops/casereview/internal/data/db"
)

func testConfig(t *testing.T, backend config.Backend) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Storage.Backend = backend
	return &cfg
}

func TestOpen_Backends(t *testing.T) {
	for _, backend := range []config.Backend{config.BackendSQLite, config.BackendDisk, config.BackendMemory} {
		t.Run(string(backend), func(t *testing.T) {
			ctx := context.Background()
			app, err := casereview.Open(ctx, testConfig(t, backend))
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, app.Close()) })

			_, err = app.Records.Put(ctx, "C1", caserecord.Fields{}.WithStatus(caserecord.StatusComplete))
			require.NoError(t, err)
			assert.Equal(t, caserecord.StatusComplete, app.Records.Get(ctx, "C1").Status)
		})
	}
}

func TestOpen_SQLitePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendSQLite)

	first, err := casereview.Open(ctx, cfg)
	require.NoError(t, err)
	_, err = first.Records.Put(ctx, "C1", caserecord.Fields{}.WithRemarks("seen"))
	require.NoError(t, err)
	require.NoError(t, first.Records.PutSelectionHandoff(ctx, caserecord.SelectionHandoff{CaseID: "C1", RequestedSlice: 3}))
	require.NoError(t, first.Close())

	second, err := casereview.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	assert.Equal(t, "seen", second.Records.Get(ctx, "C1").Remarks)
	h, ok := second.Records.TakeSelectionHandoff(ctx)
	require.True(t, ok)
	assert.Equal(t, 3, h.RequestedSlice)
}

func TestOpen_RecoversCorruptDatabase(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendSQLite)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, db.FileName), bytes.Repeat([]byte("not a database "), 128), 0o644))

	app, err := casereview.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	matches, err := filepath.Glob(filepath.Join(cfg.DataDir, db.FileName+".corrupt.*"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	_, err = app.Records.Put(ctx, "C1", caserecord.Fields{}.WithRemarks("fresh"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", app.Records.Get(ctx, "C1").Remarks)
}
