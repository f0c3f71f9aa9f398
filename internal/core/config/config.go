// Package config handles configuration loading and validation for casereview.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/casereview/internal/core/styles"
	"github.com/colonyops/casereview/internal/review/viewport"
	"github.com/colonyops/casereview/pkg/tmpl"
)

// Backend selects where case records are stored.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendDisk   Backend = "disk"
	BackendMemory Backend = "memory"
)

// IsValid reports whether b is a supported backend.
func (b Backend) IsValid() bool {
	switch b {
	case BackendSQLite, BackendDisk, BackendMemory:
		return true
	default:
		return false
	}
}

// Config holds the application configuration.
type Config struct {
	Storage       StorageConfig  `yaml:"storage"`
	Handoff       HandoffConfig  `yaml:"handoff"`
	Viewport      ViewportConfig `yaml:"viewport"`
	Routes        RoutesConfig   `yaml:"routes"`
	TUI           TUIConfig      `yaml:"tui"`
	SweepInterval time.Duration  `yaml:"sweep_interval"`
	DataDir       string         `yaml:"-"` // set by caller, not from config file
}

// StorageConfig selects and tunes the record store backend.
type StorageConfig struct {
	Backend        Backend `yaml:"backend"`
	MaxOpenConns   int     `yaml:"max_open_conns"`
	MaxIdleConns   int     `yaml:"max_idle_conns"`
	BusyTimeoutMS  int     `yaml:"busy_timeout_ms"`
	DiskCacheBytes uint64  `yaml:"disk_cache_bytes"`
}

// HandoffConfig controls the cross-screen selection handoff.
type HandoffConfig struct {
	TTL time.Duration `yaml:"ttl"` // unconsumed handoffs expire after this long
}

// ViewportConfig sizes the slice viewer.
type ViewportConfig struct {
	DefaultSlices      int     `yaml:"default_slices"`
	MinEstimatedSlices int     `yaml:"min_estimated_slices"`
	MaxEstimatedSlices int     `yaml:"max_estimated_slices"`
	BytesPerSlice      int64   `yaml:"bytes_per_slice"`
	ZoomStep           float64 `yaml:"zoom_step"`
	ZoomMin            float64 `yaml:"zoom_min"`
	ZoomMax            float64 `yaml:"zoom_max"`
	VirtualHeight      float64 `yaml:"virtual_height"`
	ViewportHeight     float64 `yaml:"viewport_height"`
}

// RoutesConfig names the screens the review screen leaves to.
type RoutesConfig struct {
	Folder   string `yaml:"folder"`   // template, rendered with RouteData
	Fallback string `yaml:"fallback"` // used when no patient context is known
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `yaml:"theme"` // built-in theme name, see styles.ThemeNames
}

// RouteData defines available fields for route templates.
type RouteData struct {
	PatientID string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	slices := viewport.DefaultSliceCountOptions()
	view := viewport.DefaultOptions()

	return Config{
		Storage: StorageConfig{
			Backend:        BackendSQLite,
			MaxOpenConns:   4,
			MaxIdleConns:   2,
			BusyTimeoutMS:  5000,
			DiskCacheBytes: 1 << 20,
		},
		Handoff: HandoffConfig{
			TTL: 10 * time.Minute,
		},
		Viewport: ViewportConfig{
			DefaultSlices:      slices.Default,
			MinEstimatedSlices: slices.Min,
			MaxEstimatedSlices: slices.Max,
			BytesPerSlice:      slices.BytesPerSlice,
			ZoomStep:           view.ZoomStep,
			ZoomMin:            view.ZoomMin,
			ZoomMax:            view.ZoomMax,
			VirtualHeight:      view.VirtualHeight,
			ViewportHeight:     view.ViewportHeight,
		},
		Routes: RoutesConfig{
			Folder:   "/file-folder/{{ .PatientID | pathEscape }}/images",
			Fallback: "/patient-record",
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
		SweepInterval: time.Minute,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = d.Storage.MaxOpenConns
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = d.Storage.MaxIdleConns
	}
	if c.Storage.BusyTimeoutMS == 0 {
		c.Storage.BusyTimeoutMS = d.Storage.BusyTimeoutMS
	}
	if c.Storage.DiskCacheBytes == 0 {
		c.Storage.DiskCacheBytes = d.Storage.DiskCacheBytes
	}
	if c.Handoff.TTL == 0 {
		c.Handoff.TTL = d.Handoff.TTL
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = d.SweepInterval
	}

	v, dv := &c.Viewport, d.Viewport
	if v.DefaultSlices == 0 {
		v.DefaultSlices = dv.DefaultSlices
	}
	if v.MinEstimatedSlices == 0 {
		v.MinEstimatedSlices = dv.MinEstimatedSlices
	}
	if v.MaxEstimatedSlices == 0 {
		v.MaxEstimatedSlices = dv.MaxEstimatedSlices
	}
	if v.BytesPerSlice == 0 {
		v.BytesPerSlice = dv.BytesPerSlice
	}
	if v.ZoomStep == 0 {
		v.ZoomStep = dv.ZoomStep
	}
	if v.ZoomMin == 0 {
		v.ZoomMin = dv.ZoomMin
	}
	if v.ZoomMax == 0 {
		v.ZoomMax = dv.ZoomMax
	}
	if v.VirtualHeight == 0 {
		v.VirtualHeight = dv.VirtualHeight
	}
	if v.ViewportHeight == 0 {
		v.ViewportHeight = dv.ViewportHeight
	}

	if c.Routes.Folder == "" {
		c.Routes.Folder = d.Routes.Folder
	}
	if c.Routes.Fallback == "" {
		c.Routes.Fallback = d.Routes.Fallback
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
}

// SliceCountOptions returns the slice count derivation settings.
func (c *Config) SliceCountOptions() viewport.SliceCountOptions {
	return viewport.SliceCountOptions{
		Default:       c.Viewport.DefaultSlices,
		Min:           c.Viewport.MinEstimatedSlices,
		Max:           c.Viewport.MaxEstimatedSlices,
		BytesPerSlice: c.Viewport.BytesPerSlice,
	}
}

// ViewportOptions returns the zoom limits and scroll track size.
func (c *Config) ViewportOptions() viewport.Options {
	return viewport.Options{
		ZoomStep:       c.Viewport.ZoomStep,
		ZoomMin:        c.Viewport.ZoomMin,
		ZoomMax:        c.Viewport.ZoomMax,
		VirtualHeight:  c.Viewport.VirtualHeight,
		ViewportHeight: c.Viewport.ViewportHeight,
	}
}

// LeaveDestination returns where leaving a case goes: the patient's image
// folder when patientID is known, otherwise the fallback route.
func (c *Config) LeaveDestination(patientID string) (string, error) {
	if patientID == "" {
		return c.Routes.Fallback, nil
	}
	dest, err := tmpl.Render(c.Routes.Folder, RouteData{PatientID: patientID})
	if err != nil {
		return "", fmt.Errorf("render folder route: %w", err)
	}
	return dest, nil
}

// DiskStoreDir returns the directory used by the disk backend.
func (c *Config) DiskStoreDir() string {
	return filepath.Join(c.DataDir, "records")
}
