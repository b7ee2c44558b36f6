package middleware

import (
	"net/http"
	"path"
	"strings"
)

// TrimSlash redirects "/x/" to "/x", preserving the query string.
// The root path is left alone.
func TrimSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if len(p) > 1 && strings.HasSuffix(p, "/") {
				redirect(w, r, strings.TrimRight(p, "/"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AddSlash redirects "/x" to "/x/" unless the last segment looks like a file.
func AddSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if !strings.HasSuffix(p, "/") && path.Ext(p) == "" {
				redirect(w, r, p+"/")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if target == "" {
		target = "/"
	}
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}
