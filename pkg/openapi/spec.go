package openapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

// NewSpec creates an empty OpenAPI 3.1 document.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI:    "3.1.0",
		Info:       &Info{Title: title, Version: version},
		Paths:      make(map[string]*PathItem),
		Components: NewComponents(),
	}
}

// SetDescription sets the document description.
func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// AddServer appends a server URL. Empty URLs are ignored.
func (s *Spec) AddServer(url string) {
	if url == "" {
		return
	}
	s.Servers = append(s.Servers, &Server{URL: url})
}

// RequireAPIKey registers a header API key scheme and applies it to every operation.
func (s *Spec) RequireAPIKey(header string) {
	s.Components.SecuritySchemes["ApiKeyAuth"] = &SecurityScheme{
		Type: "apiKey",
		Name: header,
		In:   "header",
	}
	s.Security = []map[string][]string{{"ApiKeyAuth": {}}}
}

// AddOperation attaches op to path under method. Nil operations are skipped.
// Go 1.22 pattern wildcards such as "{id}" are already OpenAPI path params.
func (s *Spec) AddOperation(path, method string, op *Operation) {
	if op == nil {
		return
	}
	path = strings.TrimSuffix(path, "/{$}")
	if path == "" {
		path = "/"
	}

	item, ok := s.Paths[path]
	if !ok {
		item = &PathItem{}
		s.Paths[path] = item
	}

	switch method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodDelete:
		item.Delete = op
	}
}

// NewComponents creates a component registry seeded with the shared error
// schema and the standard error responses.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"ErrorResponse": {
				Type: "object",
				Properties: map[string]*Property{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":   ResponseJSON("Invalid request", "ErrorResponse"),
			"Unauthorized": ResponseJSON("Missing or invalid API key", "ErrorResponse"),
			"NotFound":     ResponseJSON("Resource not found", "ErrorResponse"),
			"Conflict":     ResponseJSON("Request conflicts with current state", "ErrorResponse"),
		},
		SecuritySchemes: make(map[string]*SecurityScheme),
	}
}

// AddSchemas registers every schema in schemas, replacing existing names.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	for name, schema := range schemas {
		c.Schemas[name] = schema
	}
}

// MarshalJSON renders the document as indented JSON.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// ServeSpec returns a handler that writes a pre-rendered document.
func ServeSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(spec)
	}
}
