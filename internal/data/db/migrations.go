package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// step is one numbered schema change and its rollback, loaded from the
// NNNN_name.up.sql / NNNN_name.down.sql pair.
type step struct {
	Version int
	Name    string
	Up      string
	Down    string
}

var stepFile = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// parseStepFile splits a migration file name into version, name and
// direction.
func parseStepFile(file string) (version int, name, direction string, err error) {
	m := stepFile.FindStringSubmatch(file)
	if m == nil {
		return 0, "", "", fmt.Errorf("%q does not match NNNN_name.{up,down}.sql", file)
	}
	version, _ = strconv.Atoi(m[1])
	if version <= 0 {
		return 0, "", "", fmt.Errorf("%q: version must be positive", file)
	}
	return version, m[2], m[3], nil
}

// loadSteps returns the embedded steps in version order. Every version
// needs exactly one up and one down file.
func loadSteps() ([]step, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]*step{}
	for _, e := range entries {
		version, name, dir, err := parseStepFile(e.Name())
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(migrationsFS, "migrations/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}

		s := byVersion[version]
		if s == nil {
			s = &step{Version: version, Name: name}
			byVersion[version] = s
		}
		target := &s.Up
		if dir == "down" {
			target = &s.Down
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s file for version %04d", dir, version)
		}
		*target = string(body)
	}

	steps := make([]step, 0, len(byVersion))
	for _, s := range byVersion {
		if s.Up == "" || s.Down == "" {
			return nil, fmt.Errorf("migration %04d needs both up and down files", s.Version)
		}
		steps = append(steps, *s)
	}
	slices.SortFunc(steps, func(a, b step) int { return a.Version - b.Version })
	return steps, nil
}

// migrateUp applies every step not yet recorded in schema_migrations.
func migrateUp(ctx context.Context, conn *sql.DB) error {
	steps, applied, err := migrationState(ctx, conn)
	if err != nil {
		return err
	}

	for _, s := range steps {
		if applied[s.Version] {
			continue
		}
		log.Info().Int("version", s.Version).Str("name", s.Name).Msg("applying migration")
		err := inTx(ctx, conn, s.Up,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			s.Version, s.Name, time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("migration %04d (%s): %w", s.Version, s.Name, err)
		}
	}
	return nil
}

// MigrateDown reverts the n most recently applied steps.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	if n <= 0 {
		return fmt.Errorf("n must be positive, got %d", n)
	}
	steps, applied, err := migrationState(ctx, conn)
	if err != nil {
		return err
	}

	var revert []step
	for _, s := range slices.Backward(steps) {
		if applied[s.Version] {
			revert = append(revert, s)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("requested %d down migrations but only %d are applied", n, len(revert))
	}

	for _, s := range revert[:n] {
		log.Info().Int("version", s.Version).Str("name", s.Name).Msg("reverting migration")
		err := inTx(ctx, conn, s.Down, "DELETE FROM schema_migrations WHERE version = ?", s.Version)
		if err != nil {
			return fmt.Errorf("revert %04d (%s): %w", s.Version, s.Name, err)
		}
	}
	return nil
}

func migrationState(ctx context.Context, conn *sql.DB) ([]step, map[int]bool, error) {
	steps, err := loadSteps()
	if err != nil {
		return nil, nil, err
	}

	_, err = conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`)
	if err != nil {
		return nil, nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("query applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, nil, fmt.Errorf("scan version: %w", err)
		}
		applied[v] = true
	}
	return steps, applied, rows.Err()
}

// inTx runs the schema change and its bookkeeping statement atomically.
func inTx(ctx context.Context, conn *sql.DB, change, bookkeeping string, args ...any) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, change); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}
