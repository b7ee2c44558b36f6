package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/image-intake/internal/config"
)

const envFile = ".env"

func main() {
	if err := run(); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("finalize config: %w", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, srv, cfg.ShutdownTimeoutDuration())
}

// serve blocks until ctx is done or the HTTP server fails, then shuts every
// subsystem down. A serve failure is returned.
func serve(ctx context.Context, srv *Server, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err, ok := <-srv.http.Notify():
			if !ok {
				if gctx.Err() != nil {
					return nil
				}
				return errors.New("http server stopped")
			}
			return fmt.Errorf("http server: %w", err)
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown(timeout)
	})

	return g.Wait()
}
