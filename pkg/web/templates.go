// Package web serves server-rendered pages from embedded Go templates.
// Templates are parsed once, at construction.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"
)

// PageDef defines a page with its route, template file, and title.
type PageDef struct {
	Route    string
	Template string
	Title    string
}

// PageData contains the data passed to page templates during rendering.
// BasePath enables portable URL generation in templates via {{ .BasePath }}.
type PageData struct {
	Title    string
	BasePath string
	Data     any
}

// DataFunc loads the data a page renders for a request.
type DataFunc func(r *http.Request) (any, error)

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"timestamp": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04:05 UTC")
	},
	"base": filepath.Base,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// TemplateSet holds pre-parsed templates and a base path for URL generation.
type TemplateSet struct {
	pages    map[string]*template.Template
	basePath string
	logger   *slog.Logger
}

// NewTemplateSet parses the layouts matching layoutGlob and clones them once
// per page, adding the page template from pageSubdir.
func NewTemplateSet(layoutFS, pageFS fs.FS, layoutGlob, pageSubdir, basePath string, pages []PageDef, logger *slog.Logger) (*TemplateSet, error) {
	layouts, err := template.New("").Funcs(Funcs).ParseFS(layoutFS, layoutGlob)
	if err != nil {
		return nil, err
	}

	pageSub, err := fs.Sub(pageFS, pageSubdir)
	if err != nil {
		return nil, err
	}

	pageTemplates := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", p.Template, err)
		}
		if _, err := t.ParseFS(pageSub, p.Template); err != nil {
			return nil, fmt.Errorf("parse template: %s: %w", p.Template, err)
		}
		pageTemplates[p.Template] = t
	}

	return &TemplateSet{
		pages:    pageTemplates,
		basePath: basePath,
		logger:   logger,
	}, nil
}

// ErrorHandler returns a handler that renders page with the given status code.
func (ts *TemplateSet) ErrorHandler(layout string, page PageDef, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Title: page.Title, BasePath: ts.basePath}
		ts.write(w, status, layout, page.Template, data)
	}
}

// PageHandler returns a handler that renders page with the data returned by
// load. A nil load renders the page without data.
func (ts *TemplateSet) PageHandler(layout string, page PageDef, load DataFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Title: page.Title, BasePath: ts.basePath}
		if load != nil {
			v, err := load(r)
			if err != nil {
				ts.logger.Error("page data failed", "page", page.Template, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			data.Data = v
		}
		ts.write(w, http.StatusOK, layout, page.Template, data)
	}
}

// Render executes layoutName for the page template into w.
func (ts *TemplateSet) Render(w http.ResponseWriter, layoutName, pagePath string, data PageData) error {
	var buf bytes.Buffer
	if err := ts.execute(&buf, layoutName, pagePath, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// write buffers the render; a template error yields a 500 with no partial body.
func (ts *TemplateSet) write(w http.ResponseWriter, status int, layout, page string, data PageData) {
	var buf bytes.Buffer
	if err := ts.execute(&buf, layout, page, data); err != nil {
		ts.logger.Error("render failed", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (ts *TemplateSet) execute(buf *bytes.Buffer, layout, page string, data PageData) error {
	t, ok := ts.pages[page]
	if !ok {
		return fmt.Errorf("template not found: %s", page)
	}
	return t.ExecuteTemplate(buf, layout, data)
}
