package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Config contains blob storage configuration.
type Config struct {
	// BasePath is the root directory for stored uploads.
	// Default: "uploads"
	BasePath string `toml:"base_path"`

	// DirMode and FileMode are octal permission strings.
	// Defaults: "0755" and "0644"
	DirMode  string `toml:"dir_mode"`
	FileMode string `toml:"file_mode"`

	dirMode  os.FileMode
	fileMode os.FileMode
}

// Env names the environment variables that override storage settings.
type Env struct {
	BasePath string
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.DirMode != "" {
		c.DirMode = overlay.DirMode
	}
	if overlay.FileMode != "" {
		c.FileMode = overlay.FileMode
	}
}

func (c *Config) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "uploads"
	}
	if c.DirMode == "" {
		c.DirMode = "0755"
	}
	if c.FileMode == "" {
		c.FileMode = "0644"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BasePath != "" {
		if v := os.Getenv(env.BasePath); v != "" {
			c.BasePath = v
		}
	}
}

func (c *Config) validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("base_path required")
	}

	dirMode, err := strconv.ParseUint(c.DirMode, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid dir_mode: %w", err)
	}
	fileMode, err := strconv.ParseUint(c.FileMode, 8, 32)
	if err != nil {
		return fmt.Errorf("invalid file_mode: %w", err)
	}

	c.dirMode = os.FileMode(dirMode)
	c.fileMode = os.FileMode(fileMode)
	return nil
}

func (c *Config) modes() (os.FileMode, os.FileMode) {
	dir, file := c.dirMode, c.fileMode
	if dir == 0 {
		dir = 0755
	}
	if file == 0 {
		file = 0644
	}
	return dir, file
}
