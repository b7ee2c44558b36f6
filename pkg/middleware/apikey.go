package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKeyHeader is the request header carrying the client key.
const APIKeyHeader = "X-API-Key"

// APIKey rejects requests whose X-API-Key header does not match key.
// An empty key disables the check. Preflight requests always pass so CORS
// can answer them.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}

		expected := []byte(key)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			provided := []byte(r.Header.Get(APIKeyHeader))
			if subtle.ConstantTimeCompare(provided, expected) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid or missing API key"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
