package routes

import (
	"net/http"

	"github.com/JaimeStill/image-intake/pkg/openapi"
)

// Register mounts every route in groups on mux and records its operation in
// spec. Mux patterns are relative to the module; spec paths are prefixed with
// basePath so the document reflects the public URL.
func Register(mux *http.ServeMux, basePath string, spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, basePath, spec, "", group)
	}
}

func registerGroup(mux *http.ServeMux, basePath string, spec *openapi.Spec, parent string, group Group) {
	prefix := parent + group.Prefix

	for _, route := range group.Routes {
		pattern := prefix + route.Pattern
		if pattern == "" {
			pattern = "/"
		}
		mux.HandleFunc(route.Method+" "+pattern, route.Handler)

		if spec != nil && route.OpenAPI != nil {
			op := route.OpenAPI
			if len(op.Tags) == 0 {
				op.Tags = group.Tags
			}
			spec.AddOperation(basePath+pattern, route.Method, op)
		}
	}

	for _, child := range group.Children {
		registerGroup(mux, basePath, spec, prefix, child)
	}
}
