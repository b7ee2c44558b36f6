package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/image-intake/pkg/lifecycle"
)

type filesystem struct {
	basePath string
	dirMode  os.FileMode
	fileMode os.FileMode
	logger   *slog.Logger
}

// New creates a filesystem storage system rooted at cfg.BasePath.
// The base directory is created when the system starts.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("base_path required")
	}

	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base_path: %w", err)
	}

	dirMode, fileMode := cfg.modes()

	return &filesystem{
		basePath: absPath,
		dirMode:  dirMode,
		fileMode: fileMode,
		logger:   logger.With("system", "storage"),
	}, nil
}

func (f *filesystem) Start(lc *lifecycle.Coordinator) error {
	f.logger.Info("starting storage system", "base_path", f.basePath)

	if err := os.MkdirAll(f.basePath, f.dirMode); err != nil {
		return fmt.Errorf("create base directory: %w", err)
	}
	return nil
}

func (f *filesystem) Store(ctx context.Context, key string, r io.Reader) (int64, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, f.dirMode); err != nil {
		return 0, mapFSError("create directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return 0, mapFSError("create temp file", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("write %s: %w", key, err)
	}

	if err := os.Chmod(tmpPath, f.fileMode); err != nil {
		os.Remove(tmpPath)
		return n, mapFSError("chmod temp file", err)
	}

	// Link fails on an existing target, so a finished key is never replaced.
	err = os.Link(tmpPath, path)
	os.Remove(tmpPath)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return n, fmt.Errorf("store %s: %w", key, ErrExists)
		}
		return n, mapFSError("link temp file", err)
	}

	f.logger.Debug("blob stored", "key", key, "bytes", n)
	return n, nil
}

func (f *filesystem) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, mapFSError("open file", err)
	}
	return file, nil
}

func (f *filesystem) Delete(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return mapFSError("remove file", err)
	}

	dir := filepath.Dir(path)
	if dir != f.basePath && strings.HasPrefix(dir, f.basePath) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			f.logger.Warn("failed to read directory for cleanup", "dir", dir, "error", err)
			return nil
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
				f.logger.Warn("failed to remove empty directory", "dir", dir, "error", err)
			}
		}
	}

	return nil
}

func (f *filesystem) Path(ctx context.Context, key string) (string, error) {
	return f.fullPath(key)
}

func (f *filesystem) fullPath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	cleaned := filepath.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidKey
	}

	full := filepath.Join(f.basePath, cleaned)
	if !strings.HasPrefix(full, f.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}

func mapFSError(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
