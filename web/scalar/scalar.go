// Package scalar serves the interactive API reference for the OpenAPI
// document published by the API module.
package scalar

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/JaimeStill/image-intake/pkg/module"
)

//go:embed index.html
var indexHTML string

var index = template.Must(template.New("index").Parse(indexHTML))

type page struct {
	Title   string
	SpecURL string
}

// NewModule creates the reference module at basePath, rendering the document
// served at specURL.
func NewModule(basePath, title, specURL string) (*module.Module, error) {
	var buf bytes.Buffer
	if err := index.Execute(&buf, page{Title: title, SpecURL: specURL}); err != nil {
		return nil, err
	}
	body := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})

	return module.New(basePath, mux), nil
}
