package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/image-intake/pkg/middleware"
)

func corsConfig(origins ...string) *middleware.CORSConfig {
	cfg := &middleware.CORSConfig{Enabled: true, Origins: origins}
	cfg.Finalize(nil)
	return cfg
}

func TestCORS_Disabled(t *testing.T) {
	cfg := corsConfig("http://localhost:3000")
	cfg.Enabled = false

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	middleware.CORS(cfg)(okHandler()).ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestCORS_Origins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"allowed", []string{"http://localhost:3000"}, "http://localhost:3000", "http://localhost:3000"},
		{"disallowed", []string{"http://localhost:3000"}, "http://evil.example", ""},
		{"wildcard", []string{"*"}, "http://any.example", "http://any.example"},
		{"no origin header", []string{"*"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			middleware.CORS(corsConfig(tt.allowed...))(okHandler()).ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	cfg := corsConfig("http://localhost:3000")
	cfg.AllowCredentials = true

	req := httptest.NewRequest(http.MethodOptions, "/submit-image", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	middleware.CORS(cfg)(next).ServeHTTP(w, req)

	if called {
		t.Error("preflight reached the next handler")
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, DELETE, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("Access-Control-Max-Age = %q, want 3600", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
}

func TestCORSConfig_Finalize_Env(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.example, http://b.example ,")

	cfg := &middleware.CORSConfig{}
	err := cfg.Finalize(&middleware.CORSEnv{
		Enabled: "TEST_CORS_ENABLED",
		Origins: "TEST_CORS_ORIGINS",
	})
	if err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("Enabled = false, want true")
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "http://b.example" {
		t.Errorf("Origins = %v", cfg.Origins)
	}
}

func TestCORSConfig_Merge(t *testing.T) {
	base := middleware.CORSConfig{Enabled: true, Origins: []string{"http://a.example"}, MaxAge: 100}
	overlay := middleware.CORSConfig{Enabled: false, MaxAge: 0}

	base.Merge(&overlay)

	if base.Enabled {
		t.Error("Enabled = true, want overlay false")
	}
	if len(base.Origins) != 1 {
		t.Errorf("Origins = %v, want base preserved", base.Origins)
	}
	if base.MaxAge != 100 {
		t.Errorf("MaxAge = %d, want 100", base.MaxAge)
	}
}
