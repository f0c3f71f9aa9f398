package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/casereview/internal/core/styles"
	"github.com/colonyops/casereview/pkg/tmpl"
)

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, func(s string) error {
			if s == "" {
				return errors.New("data directory cannot be empty")
			}
			return nil
		}),
		c.validateStorage(),
		c.validateViewport(),
		c.validateRoutes(),
		criterio.Run("handoff.ttl", c.Handoff.TTL, positiveDuration),
		criterio.Run("sweep_interval", c.SweepInterval, positiveDuration),
		criterio.Run("tui.theme", c.TUI.Theme, func(name string) error {
			if _, ok := styles.GetPalette(name); !ok {
				return fmt.Errorf("unknown theme %q (want one of %s)", name, strings.Join(styles.ThemeNames(), ", "))
			}
			return nil
		}),
	)
}

// ValidateDeep runs Validate and then checks the filesystem: the config file
// must be a regular file and the data directory must be a directory or not
// exist yet.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func (c *Config) validateStorage() error {
	var errs criterio.FieldErrorsBuilder
	s := c.Storage

	if !s.Backend.IsValid() {
		errs = errs.Append("storage.backend", fmt.Errorf("unknown backend %q (want sqlite, disk or memory)", s.Backend))
	}
	if s.MaxOpenConns < 1 {
		errs = errs.Append("storage.max_open_conns", errors.New("must be at least 1"))
	}
	if s.MaxIdleConns < 0 || s.MaxIdleConns > s.MaxOpenConns {
		errs = errs.Append("storage.max_idle_conns", errors.New("must be between 0 and max_open_conns"))
	}
	if s.BusyTimeoutMS < 0 {
		errs = errs.Append("storage.busy_timeout_ms", errors.New("cannot be negative"))
	}

	return errs.ToError()
}

func (c *Config) validateViewport() error {
	var errs criterio.FieldErrorsBuilder
	v := c.Viewport

	if v.DefaultSlices < 1 {
		errs = errs.Append("viewport.default_slices", errors.New("must be at least 1"))
	}
	if v.MinEstimatedSlices < 1 {
		errs = errs.Append("viewport.min_estimated_slices", errors.New("must be at least 1"))
	}
	if v.MaxEstimatedSlices < v.MinEstimatedSlices {
		errs = errs.Append("viewport.max_estimated_slices", errors.New("must not be less than min_estimated_slices"))
	}
	if v.BytesPerSlice < 1 {
		errs = errs.Append("viewport.bytes_per_slice", errors.New("must be positive"))
	}
	if v.ZoomStep <= 0 {
		errs = errs.Append("viewport.zoom_step", errors.New("must be positive"))
	}
	if v.ZoomMin <= 0 || v.ZoomMin > 1 {
		errs = errs.Append("viewport.zoom_min", errors.New("must be in (0, 1]"))
	}
	if v.ZoomMax < 1 {
		errs = errs.Append("viewport.zoom_max", errors.New("must be at least 1"))
	}
	if v.ViewportHeight <= 0 {
		errs = errs.Append("viewport.viewport_height", errors.New("must be positive"))
	}
	if v.VirtualHeight < v.ViewportHeight {
		errs = errs.Append("viewport.virtual_height", errors.New("must not be less than viewport_height"))
	}

	return errs.ToError()
}

// validateRoutes test-renders the folder template so typos fail at load
// rather than when a reviewer leaves a case.
func (c *Config) validateRoutes() error {
	var errs criterio.FieldErrorsBuilder

	if _, err := tmpl.Render(c.Routes.Folder, RouteData{PatientID: "P1"}); err != nil {
		errs = errs.Append("routes.folder", fmt.Errorf("template error: %w", err))
	}
	if c.Routes.Fallback == "" {
		errs = errs.Append("routes.fallback", errors.New("cannot be empty"))
	}

	return errs.ToError()
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
