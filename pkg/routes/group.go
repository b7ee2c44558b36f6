// Package routes declares HTTP route groups and registers them with a ServeMux
// and an OpenAPI document in one pass.
package routes

import (
	"net/http"

	"github.com/JaimeStill/image-intake/pkg/openapi"
)

// Route is a single method and pattern bound to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Group is a set of routes sharing a prefix and OpenAPI tags.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group
}
