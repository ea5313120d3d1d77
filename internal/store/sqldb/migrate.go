package sqldb

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// NewMigrator builds a migrate instance over the embedded migrations for d's dialect.
// Closing the migrator also closes d.
func NewMigrator(d *DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+string(d.Dialect))
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	var drv database.Driver
	switch d.Dialect {
	case DialectPostgres:
		drv, err = migratepg.WithInstance(d.DB.DB, &migratepg.Config{})
	case DialectSQLite:
		drv, err = migratesqlite.WithInstance(d.DB.DB, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported sql dialect %q", d.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, string(d.Dialect), drv)
}

// Migrate applies all pending up migrations.
func Migrate(d *DB) error {
	m, err := NewMigrator(d)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
