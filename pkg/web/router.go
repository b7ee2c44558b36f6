package web

import "net/http"

// Router is a ServeMux with a fallback for requests no pattern matches.
type Router struct {
	mux      *http.ServeMux
	fallback http.HandlerFunc
}

// NewRouter creates a Router whose fallback is http.NotFound.
func NewRouter() *Router {
	return &Router{
		mux:      http.NewServeMux(),
		fallback: http.NotFound,
	}
}

func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

// SetFallback replaces the handler used when no pattern matches.
func (r *Router) SetFallback(handler http.HandlerFunc) {
	r.fallback = handler
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if _, pattern := r.mux.Handler(req); pattern == "" {
		r.fallback(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}
