// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/image-intake/internal/config"
	"github.com/JaimeStill/image-intake/migrations"
	"github.com/JaimeStill/image-intake/pkg/database"
	"github.com/JaimeStill/image-intake/pkg/lifecycle"
	"github.com/JaimeStill/image-intake/pkg/logging"
	"github.com/JaimeStill/image-intake/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	migrate   bool
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		migrate:   cfg.Database.Migrate(),
	}, nil
}

// Start connects the database, applies pending migrations, and prepares storage.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}

	if i.migrate {
		dialect := i.Database.Dialect()
		if err := database.Migrate(i.Database.Connection(), dialect, migrations.FS, migrations.Dir(dialect)); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
		i.Logger.Info("database migrated", "dialect", dialect)
	}

	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
