package sqlstore

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// migrationFS holds one directory of numbered .up.sql/.down.sql files per
// dialect.
//
//go:embed migrations
var migrationFS embed.FS

// Migration directions accepted by Migrate.
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// Migrate applies (up) or reverts (down) every embedded migration for the
// store's dialect. Being already at the target version is not an error.
//
// The migrate instance is built on the existing pool and deliberately not
// closed: closing it would close the pool, and for ":memory:" SQLite the
// database with it.
func (db *DB) Migrate(direction string) error {
	if direction != MigrateUp && direction != MigrateDown {
		return fmt.Errorf("sqlstore: direction must be up or down, got %q", direction)
	}

	src, err := iofs.New(migrationFS, "migrations/"+string(db.dialect))
	if err != nil {
		return fmt.Errorf("sqlstore: migration source: %w", err)
	}

	var driver database.Driver
	switch db.dialect {
	case DialectSQLite:
		driver, err = migratesqlite.WithInstance(db.conn, &migratesqlite.Config{})
	case DialectPostgres:
		driver, err = migratepgx.WithInstance(db.conn, &migratepgx.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", db.dialect)
	}
	if err != nil {
		return fmt.Errorf("sqlstore: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(db.dialect), driver)
	if err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlstore: migrate %s: %w", direction, err)
	}
	return nil
}
