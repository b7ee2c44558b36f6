// Package server provides HTTP server lifecycle management with graceful shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/JaimeStill/image-intake/internal/config"
	"github.com/JaimeStill/image-intake/pkg/lifecycle"
)

// System manages the HTTP server lifecycle including startup and shutdown.
type System interface {
	// Start begins serving in the background and registers shutdown with lc.
	Start(lc *lifecycle.Coordinator) error

	// Notify delivers the error that stopped the serve loop. The channel is
	// closed without a value after a graceful shutdown.
	Notify() <-chan error

	Addr() string
}

type server struct {
	http            *http.Server
	listener        net.Listener
	notify          chan error
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New creates a server system with the specified configuration, handler, and logger.
// The listener is bound when Start is called.
func New(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) System {
	return NewWithListener(cfg, nil, handler, logger)
}

// NewWithListener creates a server system that serves on ln instead of
// binding cfg.Addr().
func NewWithListener(cfg *config.ServerConfig, ln net.Listener, handler http.Handler, logger *slog.Logger) System {
	return &server{
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeoutDuration(),
			WriteTimeout: cfg.WriteTimeoutDuration(),
		},
		listener:        ln,
		notify:          make(chan error, 1),
		logger:          logger.With("system", "server"),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}
}

// Addr returns the bound listener address once started, otherwise the
// configured address.
func (s *server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

func (s *server) Notify() <-chan error {
	return s.notify
}

// Start binds the listener, serves in the background, and shuts the server
// down when the lifecycle context is cancelled. A bind failure is returned
// synchronously; a later serve failure is delivered on Notify.
func (s *server) Start(lc *lifecycle.Coordinator) error {
	if s.listener == nil {
		ln, err := net.Listen("tcp", s.http.Addr)
		if err != nil {
			return err
		}
		s.listener = ln
	}

	go func() {
		defer close(s.notify)

		s.logger.Info("server listening", "addr", s.listener.Addr().String())
		if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
			s.notify <- err
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		} else {
			s.logger.Info("server shutdown complete")
		}
	})

	return nil
}
