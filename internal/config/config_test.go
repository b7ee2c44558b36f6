package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/image-intake/internal/config"
	"github.com/JaimeStill/image-intake/pkg/database"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFinalize_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8000", cfg.Server.Addr())
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Database.Driver != database.SQLite {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Storage.BasePath != "uploads" {
		t.Errorf("Storage.BasePath = %q, want uploads", cfg.Storage.BasePath)
	}
	if cfg.Upload.MaxSizeBytes() != 10<<20 {
		t.Errorf("Upload.MaxSizeBytes() = %d, want %d", cfg.Upload.MaxSizeBytes(), 10<<20)
	}
	if len(cfg.Upload.AllowedContentTypes) != 3 {
		t.Errorf("AllowedContentTypes = %v, want jpeg/png/gif", cfg.Upload.AllowedContentTypes)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("API.BasePath = %q, want /api", cfg.API.BasePath)
	}
	if cfg.API.Auth.APIKey != "" {
		t.Errorf("API.Auth.APIKey = %q, want empty", cfg.API.Auth.APIKey)
	}
}

func TestLoad_Overlay(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, dir, "config.toml", `
shutdown_timeout = "20s"

[server]
port = 9000

[upload]
max_size = "5MB"

[database]
path = "base.db"
`)
	writeFile(t, dir, "config.docker.toml", `
[database]
driver = "postgres"
name = "intake"
user = "intake"
host = "db"
`)
	t.Setenv(config.EnvServiceEnv, "docker")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.ShutdownTimeoutDuration() != 20*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 20s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Upload.MaxSizeBytes() != 5<<20 {
		t.Errorf("Upload.MaxSizeBytes() = %d, want %d", cfg.Upload.MaxSizeBytes(), 5<<20)
	}
	if cfg.Database.Driver != database.Postgres || cfg.Database.Host != "db" {
		t.Errorf("Database = %+v, want postgres overlay", cfg.Database)
	}
	if cfg.Env() != "docker" {
		t.Errorf("Env() = %q, want docker", cfg.Env())
	}
}

func TestFinalize_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_KEY", "secret")
	t.Setenv(config.EnvServerPort, "8123")
	t.Setenv(config.EnvUploadAllowedContentTypes, "image/png, image/webp")
	t.Setenv("STORAGE_BASE_PATH", "/var/uploads")
	t.Setenv("DATABASE_PATH", "/var/lib/intake.db")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.API.Auth.APIKey != "secret" {
		t.Errorf("APIKey = %q, want secret", cfg.API.Auth.APIKey)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Port = %d, want 8123", cfg.Server.Port)
	}
	want := []string{"image/png", "image/webp"}
	if len(cfg.Upload.AllowedContentTypes) != 2 ||
		cfg.Upload.AllowedContentTypes[0] != want[0] ||
		cfg.Upload.AllowedContentTypes[1] != want[1] {
		t.Errorf("AllowedContentTypes = %v, want %v", cfg.Upload.AllowedContentTypes, want)
	}
	if cfg.Storage.BasePath != "/var/uploads" {
		t.Errorf("Storage.BasePath = %q", cfg.Storage.BasePath)
	}
	if cfg.Database.Path != "/var/lib/intake.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
}

func TestUploadConfig_MaxSizeBytes(t *testing.T) {
	tests := []struct {
		name    string
		maxSize string
		want    int64
	}{
		{"default", "", 10 << 20},
		{"binary megabytes", "10MB", 10 << 20},
		{"iec suffix", "10MiB", 10 << 20},
		{"kilobytes", "512KB", 512 << 10},
		{"plain bytes", "10485760", 10485760},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.UploadConfig{MaxSize: tt.maxSize}
			if err := c.Finalize(); err != nil {
				t.Fatalf("Finalize() failed: %v", err)
			}
			if got := c.MaxSizeBytes(); got != tt.want {
				t.Errorf("MaxSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFinalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"shutdown timeout", config.Config{ShutdownTimeout: "never"}},
		{"server port", config.Config{Server: config.ServerConfig{Port: 70000}}},
		{"read timeout", config.Config{Server: config.ServerConfig{ReadTimeout: "slow"}}},
		{"upload size", config.Config{Upload: config.UploadConfig{MaxSize: "huge"}}},
		{"database driver", config.Config{Database: database.Config{Driver: "oracle"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Error("Finalize() succeeded, want error")
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "config.toml", "[server\nport = ")

	if _, err := config.Load(); err == nil {
		t.Error("Load() succeeded, want parse error")
	}
}
