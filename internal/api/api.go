// Package api assembles the JSON API module mounted under the configured base path.
package api

import (
	"net/http"

	"github.com/JaimeStill/image-intake/internal/config"
	"github.com/JaimeStill/image-intake/pkg/middleware"
	"github.com/JaimeStill/image-intake/pkg/module"
	"github.com/JaimeStill/image-intake/pkg/openapi"
)

// NewModule builds the API module: routes, the OpenAPI document, and the
// middleware stack over the given domain systems.
func NewModule(cfg *config.Config, runtime *Runtime, domain *Domain) (*module.Module, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.Domain)
	if cfg.API.Auth.APIKey != "" {
		spec.RequireAPIKey(middleware.APIKeyHeader)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, spec, runtime, domain, cfg)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.TrimSlash())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.APIKey(cfg.API.Auth.APIKey))

	return m, nil
}
