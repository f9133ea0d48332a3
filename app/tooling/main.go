package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jrazmi/helix/app/tooling/commands"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/sdk/environment"
	"github.com/jrazmi/helix/sdk/logger"
)

var build = "develop"
var appName = "HELIX"

func processCommands(ctx context.Context, log *logger.Logger, command string, args []string, pg *pgxpool.Pool) error {
	switch command {
	case "migrate":
		log.InfoContext(ctx, "running migration")
		if err := commands.Migrate(ctx, pg, log.Logger); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.InfoContext(ctx, "migration completed successfully")
		return nil

	case "migrate-down":
		err := commands.MigrateDown(ctx, pg, log.Logger, args)
		if errors.Is(err, commands.ErrHelp) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return nil

	case "migrate-version":
		return commands.Version(ctx, pg, log.Logger)

	default:
		printHelp()
		return nil
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  migrate         - apply every pending migration")
	fmt.Println("  migrate-down    - revert migrations (-steps N, -all)")
	fmt.Println("  migrate-version - show the applied migration version")
	fmt.Println()
	fmt.Println("Use 'go run app/tooling/main.go <command> --help' for command-specific help.")
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	var command string
	var args []string
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}
	if command == "" || command == "help" || command == "--help" || command == "-h" {
		printHelp()
		return nil
	}

	pg, err := postgresdb.NewFromEnv(appName, postgresdb.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("configuring postgres support: %w", err)
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection")
		pg.Close()
	}()

	// A signal cancels ctx; migrations stop at the next statement boundary.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return processCommands(ctx, log, command, args, pg)
}

func main() {
	environment.LoadEnv()

	log, err := logger.NewFromEnv(appName)
	if err != nil {
		fmt.Println("unable to configure logging:", err)
		os.Exit(1)
	}
	ctx := context.Background()

	if err = run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}
