package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pulse-crm/crm-api/internal/config"
)

// securityHeaderSet renders the configured headers once; empty values are skipped
func securityHeaderSet(cfg *config.SecurityConfig) map[string]string {
	set := map[string]string{
		"X-Frame-Options":         cfg.FrameOptions,
		"X-XSS-Protection":        cfg.XSSProtection,
		"Content-Security-Policy": cfg.ContentSecurityPolicy,
		"Referrer-Policy":         cfg.ReferrerPolicy,
		"Permissions-Policy":      cfg.PermissionsPolicy,
	}
	if cfg.ContentTypeNosniff {
		set["X-Content-Type-Options"] = "nosniff"
	}
	if cfg.EnableHSTS {
		hsts := []string{"max-age=" + strconv.Itoa(cfg.HSTSMaxAge)}
		if cfg.HSTSIncludeSubdomains {
			hsts = append(hsts, "includeSubDomains")
		}
		if cfg.HSTSPreload {
			hsts = append(hsts, "preload")
		}
		set["Strict-Transport-Security"] = strings.Join(hsts, "; ")
	}
	for k, v := range set {
		if v == "" {
			delete(set, k)
		}
	}
	return set
}

// SecurityHeaders adds the configured security headers to every response.
// API responses carry tenant data and are never cached.
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	headers := securityHeaderSet(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range headers {
				h.Set(k, v)
			}
			if strings.HasPrefix(r.URL.Path, "/api/") {
				h.Set("Cache-Control", "no-store")
			}
			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}
