package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
	require.NoError(t, err)

	want := DefaultConfig()
	want.DataDir = dataDir
	assert.Equal(t, &want, cfg)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: disk
handoff:
  ttl: 30s
viewport:
  default_slices: 9
  zoom_max: 8
routes:
  fallback: /cases
tui:
  theme: gruvbox
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendDisk, cfg.Storage.Backend)
	assert.Equal(t, 4, cfg.Storage.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.Handoff.TTL)
	assert.Equal(t, 9, cfg.Viewport.DefaultSlices)
	assert.Equal(t, 8.0, cfg.Viewport.ZoomMax)
	assert.Equal(t, 0.25, cfg.Viewport.ZoomStep)
	assert.Equal(t, "/cases", cfg.Routes.Fallback)
	assert.Equal(t, DefaultConfig().Routes.Folder, cfg.Routes.Folder)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, "gruvbox", cfg.TUI.Theme)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: mongo\n")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLeaveDestination(t *testing.T) {
	cfg := DefaultConfig()

	dest, err := cfg.LeaveDestination("P1")
	require.NoError(t, err)
	assert.Equal(t, "/file-folder/P1/images", dest)

	dest, err = cfg.LeaveDestination("")
	require.NoError(t, err)
	assert.Equal(t, "/patient-record", dest)

	dest, err = cfg.LeaveDestination("a b")
	require.NoError(t, err)
	assert.Equal(t, "/file-folder/a%20b/images", dest)
}

func TestDerivedOptions(t *testing.T) {
	cfg := DefaultConfig()

	slices := cfg.SliceCountOptions()
	assert.Equal(t, 7, slices.Default)
	assert.Equal(t, 5, slices.Min)
	assert.Equal(t, 25, slices.Max)
	assert.Equal(t, int64(2<<20), slices.BytesPerSlice)

	view := cfg.ViewportOptions()
	assert.Equal(t, 1980.0, view.MaxScroll())
}
