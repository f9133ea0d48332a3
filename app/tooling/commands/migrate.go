// Package commands implements the tooling subcommands.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jrazmi/helix/infrastructure/postgresdb"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

const migrateTimeout = 5 * time.Minute

// Migrate applies every pending migration.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	if err := postgresdb.StatusCheck(ctx, pool); err != nil {
		return fmt.Errorf("database status check failed: %w", err)
	}

	log.InfoContext(ctx, "database status check successful", "step", "running migrations")
	if err := postgresdb.Migrate(ctx, pool, log); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	return Version(ctx, pool, log)
}

// MigrateDown reverts migrations. Without -steps it reverts one; -all
// reverts every migration.
func MigrateDown(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("migrate-down", flag.ContinueOnError)
	steps := fs.Int("steps", 1, "number of migrations to revert")
	all := fs.Bool("all", false, "revert every migration")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ErrHelp
		}
		return fmt.Errorf("parsing flags: %w", err)
	}
	if !*all && *steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", *steps)
	}

	n := *steps
	if *all {
		n = 0
	}

	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	log.InfoContext(ctx, "reverting migrations", "steps", n, "all", *all)
	if err := postgresdb.MigrateDown(ctx, pool, log, n); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}

	return Version(ctx, pool, log)
}

// Version logs the applied migration version.
func Version(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	version, dirty, err := postgresdb.MigrationVersion(ctx, pool)
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}

	log.InfoContext(ctx, "migration version", "version", version, "dirty", dirty)
	if dirty {
		return fmt.Errorf("migration %d is dirty, fix the schema and force the version", version)
	}
	return nil
}
