package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrate applies every pending up migration found under dir in fsys.
// An already current schema is not an error.
func Migrate(db *sql.DB, dialect Dialect, fsys fs.FS, dir string) error {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	driver, err := migrationDriver(db, dialect)
	if err != nil {
		return fmt.Errorf("open migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func migrationDriver(db *sql.DB, dialect Dialect) (migratedb.Driver, error) {
	switch dialect {
	case SQLite:
		return sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	case Postgres:
		return pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	}
	return nil, fmt.Errorf("unsupported dialect: %s", dialect)
}
