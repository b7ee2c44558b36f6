package database

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config contains database connection configuration.
//
// Driver selects the engine. Postgres uses the host, port, name, user, and
// password fields; SQLite uses Path.
type Config struct {
	Driver          Dialect `toml:"driver"`
	Path            string  `toml:"path"`
	Host            string  `toml:"host"`
	Port            int     `toml:"port"`
	Name            string  `toml:"name"`
	User            string  `toml:"user"`
	Password        string  `toml:"password"`
	SSLMode         string  `toml:"ssl_mode"`
	MaxOpenConns    int     `toml:"max_open_conns"`
	MaxIdleConns    int     `toml:"max_idle_conns"`
	ConnMaxLifetime string  `toml:"conn_max_lifetime"`
	ConnTimeout     string  `toml:"conn_timeout"`
	BusyTimeout     string  `toml:"busy_timeout"`
	AutoMigrate     *bool   `toml:"auto_migrate"`
}

// Env maps environment variable names for database configuration.
type Env struct {
	Driver          string
	Path            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
	AutoMigrate     string
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime parsed as a duration.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration returns ConnTimeout parsed as a duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// BusyTimeoutDuration returns BusyTimeout parsed as a duration.
func (c *Config) BusyTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.BusyTimeout)
	return d
}

// Migrate reports whether migrations run when the database system starts.
func (c *Config) Migrate() bool {
	return c.AutoMigrate == nil || *c.AutoMigrate
}

// Dsn returns the connection string for the configured driver.
func (c *Config) Dsn() string {
	if c.Driver == SQLite {
		q := url.Values{}
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeoutDuration().Milliseconds()))
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "foreign_keys(1)")
		q.Set("_time_format", "sqlite")
		return "file:" + c.Path + "?" + q.Encode()
	}

	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode,
	)
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.User != "" {
		c.User = overlay.User
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.SSLMode != "" {
		c.SSLMode = overlay.SSLMode
	}
	if overlay.MaxOpenConns != 0 {
		c.MaxOpenConns = overlay.MaxOpenConns
	}
	if overlay.MaxIdleConns != 0 {
		c.MaxIdleConns = overlay.MaxIdleConns
	}
	if overlay.ConnMaxLifetime != "" {
		c.ConnMaxLifetime = overlay.ConnMaxLifetime
	}
	if overlay.ConnTimeout != "" {
		c.ConnTimeout = overlay.ConnTimeout
	}
	if overlay.BusyTimeout != "" {
		c.BusyTimeout = overlay.BusyTimeout
	}
	if overlay.AutoMigrate != nil {
		c.AutoMigrate = overlay.AutoMigrate
	}
}

func (c *Config) loadDefaults() {
	if c.Driver == "" {
		c.Driver = SQLite
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "15m"
	}
	if c.ConnTimeout == "" {
		c.ConnTimeout = "5s"
	}

	switch c.Driver {
	case SQLite:
		if c.Path == "" {
			c.Path = "data/image_processing.db"
		}
		if c.BusyTimeout == "" {
			c.BusyTimeout = "5s"
		}
		// SQLite allows a single writer.
		c.MaxOpenConns = 1
		c.MaxIdleConns = 1
	case Postgres:
		if c.Host == "" {
			c.Host = "localhost"
		}
		if c.Port == 0 {
			c.Port = 5432
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
		if c.MaxOpenConns == 0 {
			c.MaxOpenConns = 25
		}
		if c.MaxIdleConns == 0 {
			c.MaxIdleConns = 5
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Driver != "" {
		if v := os.Getenv(env.Driver); v != "" {
			c.Driver = Dialect(v)
		}
	}
	if env.Path != "" {
		if v := os.Getenv(env.Path); v != "" {
			c.Path = v
		}
	}
	if env.Host != "" {
		if v := os.Getenv(env.Host); v != "" {
			c.Host = v
		}
	}
	if env.Port != "" {
		if v := os.Getenv(env.Port); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				c.Port = port
			}
		}
	}
	if env.Name != "" {
		if v := os.Getenv(env.Name); v != "" {
			c.Name = v
		}
	}
	if env.User != "" {
		if v := os.Getenv(env.User); v != "" {
			c.User = v
		}
	}
	if env.Password != "" {
		if v := os.Getenv(env.Password); v != "" {
			c.Password = v
		}
	}
	if env.SSLMode != "" {
		if v := os.Getenv(env.SSLMode); v != "" {
			c.SSLMode = v
		}
	}
	if env.MaxOpenConns != "" {
		if v := os.Getenv(env.MaxOpenConns); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxOpenConns = n
			}
		}
	}
	if env.MaxIdleConns != "" {
		if v := os.Getenv(env.MaxIdleConns); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxIdleConns = n
			}
		}
	}
	if env.ConnMaxLifetime != "" {
		if v := os.Getenv(env.ConnMaxLifetime); v != "" {
			c.ConnMaxLifetime = v
		}
	}
	if env.ConnTimeout != "" {
		if v := os.Getenv(env.ConnTimeout); v != "" {
			c.ConnTimeout = v
		}
	}
	if env.AutoMigrate != "" {
		if v := os.Getenv(env.AutoMigrate); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.AutoMigrate = &b
			}
		}
	}
}

func (c *Config) validate() error {
	if err := c.Driver.Validate(); err != nil {
		return err
	}

	switch c.Driver {
	case SQLite:
		if c.Path == "" {
			return fmt.Errorf("path required")
		}
		if _, err := time.ParseDuration(c.BusyTimeout); err != nil {
			return fmt.Errorf("invalid busy_timeout: %w", err)
		}
	case Postgres:
		if c.Name == "" {
			return fmt.Errorf("name required")
		}
		if c.User == "" {
			return fmt.Errorf("user required")
		}
	}

	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}
