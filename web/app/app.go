// Package app provides the web application module with embedded templates.
package app

import (
	"context"
	"embed"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/image-intake/internal/submissions"
	"github.com/JaimeStill/image-intake/pkg/module"
	"github.com/JaimeStill/image-intake/pkg/web"
)

//go:embed server/layouts/*
var layoutFS embed.FS

//go:embed server/views/*
var viewFS embed.FS

// Lister returns every submission, newest first.
type Lister interface {
	List(ctx context.Context) ([]submissions.Submission, error)
}

var listView = web.PageDef{Route: "/{$}", Template: "submissions.html", Title: "Submissions"}

var errorViews = []web.PageDef{
	{Template: "404.html", Title: "Not Found"},
}

// NewModule creates the app module configured for the given base path.
func NewModule(basePath string, sys Lister, logger *slog.Logger) (*module.Module, error) {
	logger = logger.With("module", "app")

	ts, err := web.NewTemplateSet(
		layoutFS,
		viewFS,
		"server/layouts/*.html",
		"server/views",
		basePath,
		append([]web.PageDef{listView}, errorViews...),
		logger,
	)
	if err != nil {
		return nil, err
	}

	return module.New(basePath, buildRouter(ts, sys)), nil
}

func buildRouter(ts *web.TemplateSet, sys Lister) http.Handler {
	r := web.NewRouter()
	r.SetFallback(ts.ErrorHandler(
		"app.html",
		errorViews[0],
		http.StatusNotFound,
	))

	r.HandleFunc("GET "+listView.Route, ts.PageHandler("app.html", listView, func(req *http.Request) (any, error) {
		return sys.List(req.Context())
	}))

	return r
}
