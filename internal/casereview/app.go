// Package casereview assembles the services shared by the CLI commands and
// the TUI: the configured record backend, the event bus and the record store.
package casereview

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/casereview/internal/core/config"
	"github.com/colonyops/casereview/internal/core/eventbus"
	"github.com/colonyops/casereview/internal/core/kv"
	"github.com/colonyops/casereview/internal/core/logging"
	"github.com/colonyops/casereview/internal/data/db"
	"github.com/colonyops/casereview/internal/data/diskstore"
	"github.com/colonyops/casereview/internal/data/stores"
	"github.com/colonyops/casereview/internal/data/sweep"
	"github.com/colonyops/casereview/internal/records"
)

// App is the central entry point for all case review operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config  *config.Config
	Bus     *eventbus.EventBus
	Records *records.Store
	KV      kv.KV

	database    *db.DB
	sweepCancel context.CancelFunc
}

// Open builds an App for cfg, opening the configured storage backend and
// starting the background expiry sweep.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Bus: eventbus.New()}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.KV = store

	eventbus.RegisterDebugLogger(a.Bus, logging.Component("eventbus"))

	// Handoffs live next to the records so a selection made by one
	// invocation is visible to the next; the TTL and sweep bound them.
	a.Records = records.New(store, store, a.Bus,
		records.WithHandoffTTL(cfg.Handoff.TTL),
	)

	if sw, ok := store.(kv.Sweeper); ok && cfg.SweepInterval > 0 {
		sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		a.sweepCancel = cancel
		go sweep.Start(sweepCtx, sw, cfg.SweepInterval)
	}

	return a, nil
}

// NewInMemory returns an App backed by a process-local store. It is used
// by tests and the memory backend.
func NewInMemory(cfg *config.Config) *App {
	bus := eventbus.New()
	mem := stores.NewMemStore()
	return &App{
		Config:  cfg,
		Bus:     bus,
		KV:      mem,
		Records: records.New(mem, mem, bus, records.WithHandoffTTL(cfg.Handoff.TTL)),
	}
}

func (a *App) openStore() (kv.KV, error) {
	cfg := a.Config
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return stores.NewMemStore(), nil
	case config.BackendDisk:
		return diskstore.New(cfg.DiskStoreDir(), cfg.Storage.DiskCacheBytes), nil
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return nil, err
		}
		a.database = database
		return stores.NewKVStore(database), nil
	}
}

// openDatabase opens the sqlite store, moving a corrupt file aside and
// retrying once.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Storage.MaxOpenConns,
		MaxIdleConns: cfg.Storage.MaxIdleConns,
		BusyTimeout:  cfg.Storage.BusyTimeoutMS,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("database corrupt, moving aside")
	if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
		return nil, fmt.Errorf("recover database: %w", rerr)
	}

	database, err = db.Open(cfg.DataDir, opts)
	if err != nil {
		return nil, fmt.Errorf("open database after recovery: %w", err)
	}
	return database, nil
}

// Close stops the sweep and releases the backend.
func (a *App) Close() error {
	if a.sweepCancel != nil {
		a.sweepCancel()
	}
	if a.database != nil {
		start := time.Now()
		if err := a.database.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
		log.Debug().Dur("took", time.Since(start)).Msg("database closed")
	}
	return nil
}
