package main

import (
	"time"

	"github.com/JaimeStill/image-intake/internal/config"
	"github.com/JaimeStill/image-intake/internal/infrastructure"
	"github.com/JaimeStill/image-intake/internal/server"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    server.System
}

// NewServer creates and initializes the service with all subsystems.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"driver", cfg.Database.Driver,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    server.New(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start begins all subsystems and returns when they are ready.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go s.WaitForStartup()

	return nil
}

// WaitForStartup blocks until every startup hook has completed and marks the
// service ready.
func (s *Server) WaitForStartup() {
	s.infra.Lifecycle.WaitForStartup()
	s.infra.Logger.Info("all subsystems ready")
}

// Shutdown gracefully stops all subsystems within the provided timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
