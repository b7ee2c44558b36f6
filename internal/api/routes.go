package api

import (
	"net/http"

	"github.com/JaimeStill/image-intake/internal/config"
	"github.com/JaimeStill/image-intake/internal/submissions"
	"github.com/JaimeStill/image-intake/pkg/openapi"
	"github.com/JaimeStill/image-intake/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	spec *openapi.Spec,
	runtime *Runtime,
	domain *Domain,
	cfg *config.Config,
) {
	submissionsHandler := submissions.NewHandler(
		domain.Submissions,
		domain.Uploader,
		runtime.Logger,
		runtime.Pagination,
	)

	spec.Components.AddSchemas(submissions.Spec.Schemas())

	routes.Register(
		mux,
		cfg.API.BasePath,
		spec,
		submissionsHandler.Routes()...,
	)
}
