package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulse-crm/crm-api/internal/config"
	"github.com/pulse-crm/crm-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func preflight(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contacts", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	base := config.CORSConfig{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	tests := []struct {
		name        string
		origins     []string
		environment string
		origin      string
		allowed     bool
	}{
		{"development allows any origin", nil, "development", "http://localhost:3000", true},
		{"production denies when unconfigured", nil, "production", "http://localhost:3000", false},
		{"explicit origin allowed", []string{"https://app.pulse.test"}, "production", "https://app.pulse.test", true},
		{"explicit origin rejects others", []string{"https://app.pulse.test"}, "production", "https://evil.test", false},
		{"wildcard", []string{"*"}, "staging", "https://anything.test", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.AllowedOrigins = tt.origins
			h := middleware.CORS(&cfg, tt.environment, zap.NewNop())(okHandler(nil))

			w := preflight(h, tt.origin)
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORS_ExposesCRMHeaders(t *testing.T) {
	cfg := config.CORSConfig{AllowedMethods: []string{"GET"}, ExposedHeaders: []string{"Location"}}
	h := middleware.CORS(&cfg, "development", zap.NewNop())(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts/export", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	exposed := w.Header().Get("Access-Control-Expose-Headers")
	for _, header := range []string{"X-Request-Id", "X-Storage-Key", "X-Export-Count", "Content-Disposition"} {
		assert.Contains(t, exposed, header)
	}
}
