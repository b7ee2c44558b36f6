// Package migrations embeds the versioned schema for each supported database.
package migrations

import (
	"embed"

	"github.com/JaimeStill/image-intake/pkg/database"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir returns the migration directory for dialect.
func Dir(dialect database.Dialect) string {
	return string(dialect)
}
