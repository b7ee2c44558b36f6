package main

import (
	"net/http"

	"github.com/JaimeStill/image-intake/internal/api"
	"github.com/JaimeStill/image-intake/internal/config"
	"github.com/JaimeStill/image-intake/internal/infrastructure"
	"github.com/JaimeStill/image-intake/pkg/middleware"
	"github.com/JaimeStill/image-intake/pkg/module"
	"github.com/JaimeStill/image-intake/web/app"
	"github.com/JaimeStill/image-intake/web/scalar"
)

const (
	appPath    = "/app"
	scalarPath = "/scalar"
)

// Modules holds the mounted HTTP modules.
type Modules struct {
	API    *module.Module
	App    *module.Module
	Scalar *module.Module
}

// NewModules builds the API and app modules over shared infrastructure.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime)

	apiModule, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	appModule, err := app.NewModule(appPath, domain.Submissions, infra.Logger)
	if err != nil {
		return nil, err
	}
	appModule.Use(middleware.AddSlash())
	appModule.Use(middleware.Logger(infra.Logger))

	scalarModule, err := scalar.NewModule(scalarPath, cfg.API.OpenAPI.Title, cfg.API.BasePath+"/openapi.json")
	if err != nil {
		return nil, err
	}
	scalarModule.Use(middleware.AddSlash())

	return &Modules{
		API:    apiModule,
		App:    appModule,
		Scalar: scalarModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.App)
	router.Mount(m.Scalar)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, appPath+"/", http.StatusFound)
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	return router
}
