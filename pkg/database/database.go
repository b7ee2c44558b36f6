// Package database opens and manages the SQL connection pool.
// Postgres is served through pgx's database/sql driver and SQLite through the
// pure-Go modernc driver, so both share the same *sql.DB surface.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/image-intake/pkg/lifecycle"
)

// System exposes the connection pool and its lifecycle.
type System interface {
	Connection() *sql.DB
	Dialect() Dialect
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	dialect     Dialect
	logger      *slog.Logger
	connTimeout time.Duration
}

// New opens a connection pool for cfg. The connection is verified on Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.Driver == SQLite {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(cfg.Driver.DriverName(), cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		dialect:     cfg.Driver,
		logger:      logger.With("system", "database", "driver", string(cfg.Driver)),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Dialect() Dialect {
	return d.dialect
}

// Start pings the database and registers a shutdown hook that closes the pool.
func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")

	pingCtx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
	defer cancel()

	if err := d.conn.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	d.logger.Info("database connection established")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("closing database connection")

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}
