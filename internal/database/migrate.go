package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"workbooster/internal/logger"
)

// advisory lock key shared by every migrator process
const migrationLockKey int64 = 0x776b6272

const createSchemaMigrations = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Conn is the subset of pgx shared by *pgx.Conn and *pgxpool.Pool.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type MigrationState struct {
	Version   int        `json:"version"`
	Name      string     `json:"name"`
	AppliedAt *time.Time `json:"applied_at"`
}

var ErrSchemaOutdated = errors.New("database schema is not at the latest version, run `wbctl migrate`")

// RunMigrations applies every pending migration, each in its own transaction holding the
// migration advisory lock. It returns how many were applied.
func RunMigrations(ctx context.Context, db Conn) (int, error) {
	log := logger.Default()

	if _, err := db.Exec(ctx, createSchemaMigrations); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		ran := false
		err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockKey); err != nil {
				return fmt.Errorf("acquire migration lock: %w", err)
			}

			var exists bool
			err := tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.Version).Scan(&exists)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}

			log.Info("running migration", "version", m.Version, "name", m.Name)
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", m.Version, m.Name); err != nil {
				return err
			}
			ran = true
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if ran {
			applied++
		}
	}

	log.Info("migrations complete", "applied", applied, "version", LatestVersion())
	return applied, nil
}

// MigrationStatus lists every known migration with its applied time, if any.
func MigrationStatus(ctx context.Context, db Conn) ([]MigrationState, error) {
	appliedAt, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}

	states := make([]MigrationState, 0, len(migrations))
	for _, m := range migrations {
		state := MigrationState{Version: m.Version, Name: m.Name}
		if at, ok := appliedAt[m.Version]; ok {
			state.AppliedAt = &at
		}
		states = append(states, state)
	}
	return states, nil
}

// CheckCurrent returns ErrSchemaOutdated unless every migration has been applied.
func CheckCurrent(ctx context.Context, db Conn) error {
	appliedAt, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if _, ok := appliedAt[m.Version]; !ok {
			return fmt.Errorf("%w: missing version %d (%s)", ErrSchemaOutdated, m.Version, m.Name)
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, db Conn) (map[int]time.Time, error) {
	var exists bool
	if err := db.QueryRow(ctx, "SELECT to_regclass('schema_migrations') IS NOT NULL").Scan(&exists); err != nil {
		return nil, fmt.Errorf("check schema_migrations: %w", err)
	}
	out := make(map[int]time.Time)
	if !exists {
		return out, nil
	}

	rows, err := db.Query(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, err
		}
		out[version] = at
	}
	return out, rows.Err()
}
