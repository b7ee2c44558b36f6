package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/docker/go-units"
)

const (
	EnvUploadMaxSize             = "UPLOAD_MAX_SIZE"
	EnvUploadAllowedContentTypes = "UPLOAD_ALLOWED_CONTENT_TYPES"
)

// UploadConfig limits what the submit endpoint accepts.
type UploadConfig struct {
	// MaxSize is a human-readable byte size in binary units: "10MB" is 10 MiB.
	MaxSize             string   `toml:"max_size"`
	AllowedContentTypes []string `toml:"allowed_content_types"`
	maxSizeVal          int64
}

// MaxSizeBytes returns MaxSize parsed during Finalize.
func (c *UploadConfig) MaxSizeBytes() int64 {
	return c.maxSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the upload configuration.
func (c *UploadConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *UploadConfig) Merge(overlay *UploadConfig) {
	if overlay.MaxSize != "" {
		c.MaxSize = overlay.MaxSize
	}
	if overlay.AllowedContentTypes != nil {
		c.AllowedContentTypes = overlay.AllowedContentTypes
	}
}

func (c *UploadConfig) loadDefaults() {
	if c.MaxSize == "" {
		c.MaxSize = "10MB"
	}
	if len(c.AllowedContentTypes) == 0 {
		c.AllowedContentTypes = []string{"image/jpeg", "image/png", "image/gif"}
	}
}

func (c *UploadConfig) loadEnv() {
	if v := os.Getenv(EnvUploadMaxSize); v != "" {
		c.MaxSize = v
	}
	if v := os.Getenv(EnvUploadAllowedContentTypes); v != "" {
		types := strings.Split(v, ",")
		c.AllowedContentTypes = make([]string, 0, len(types))
		for _, t := range types {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				c.AllowedContentTypes = append(c.AllowedContentTypes, trimmed)
			}
		}
	}
}

func (c *UploadConfig) validate() error {
	size, err := units.RAMInBytes(c.MaxSize)
	if err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	if len(c.AllowedContentTypes) == 0 {
		return fmt.Errorf("allowed_content_types required")
	}
	c.maxSizeVal = size
	return nil
}
