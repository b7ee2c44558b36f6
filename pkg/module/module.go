// Package module mounts self-contained HTTP handlers under single-segment
// prefixes, each with its own middleware chain.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/image-intake/pkg/middleware"
)

// Module is a handler served beneath a fixed prefix such as "/api".
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
}

// New creates a module. It panics when prefix is not a single path segment
// beginning with "/".
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw to the module middleware chain.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// Handler returns the module middleware wrapped around prefix stripping and
// the router. Middleware observes the full request path.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(http.HandlerFunc(m.dispatch))
}

// Serve handles a request addressed to the module prefix.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, req)
}

func (m *Module) dispatch(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL.Path = path
	r.URL.RawPath = ""

	m.router.ServeHTTP(w, r)
}

func validatePrefix(prefix string) error {
	if prefix == "" || prefix[0] != '/' {
		return fmt.Errorf("module prefix must start with '/': %q", prefix)
	}
	if strings.Count(prefix, "/") != 1 {
		return fmt.Errorf("module prefix must be a single segment: %q", prefix)
	}
	return nil
}
