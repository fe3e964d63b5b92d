// Command migrate applies or rolls back the schema migrations embedded in
// internal/repository/sqlstore, against the database named by the same
// environment the server reads.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sakif/devconnector/internal/config"
	"github.com/sakif/devconnector/internal/logging"
	"github.com/sakif/devconnector/internal/repository/sqlstore"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	direction := sqlstore.MigrateUp
	if len(args) > 0 {
		direction = args[0]
	}
	if direction != sqlstore.MigrateUp && direction != sqlstore.MigrateDown {
		return fmt.Errorf("usage: migrate [up|down]")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, zl, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer zl.Sync()

	dialect, err := sqlstore.ParseDialect(cfg.DBDriver)
	if err != nil {
		return err
	}
	if dialect == sqlstore.DialectSQLite && cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlstore.Open(context.Background(), dialect, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(direction); err != nil {
		logger.Error("migration failed",
			slog.String("direction", direction),
			slog.String("error", err.Error()),
		)
		return err
	}

	logger.Info("migration complete",
		slog.String("direction", direction),
		slog.String("driver", string(dialect)),
	)
	return nil
}
