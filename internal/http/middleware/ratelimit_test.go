package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulse-crm/crm-api/internal/auth"
	"github.com/pulse-crm/crm-api/internal/config"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, path, remote string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Bypass(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.RateLimitConfig
		path   string
		mutate func(*http.Request)
	}{
		{
			name: "disabled",
			cfg:  config.RateLimitConfig{Enabled: false, RequestsPerMinute: 2},
			path: "/api/v1/contacts",
		},
		{
			name: "whitelisted ip",
			cfg:  config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, WhitelistIPs: []string{"192.168.1.1"}},
			path: "/api/v1/contacts",
		},
		{
			name: "whitelisted path prefix",
			cfg:  config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, WhitelistPaths: []string{"/health/*"}},
			path: "/health/ready",
		},
		{
			name:   "forwarded client whitelisted",
			cfg:    config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, WhitelistIPs: []string{"10.0.0.1"}},
			path:   "/api/v1/contacts",
			mutate: func(r *http.Request) { r.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			rl := middleware.NewRateLimiter(&cfg, zap.NewNop())
			calls := 0
			h := rl.LimitByIP(okHandler(&calls))
			for i := 0; i < 20; i++ {
				assert.Equal(t, http.StatusOK, hit(h, tt.path, "192.168.1.1:5000", tt.mutate).Code)
			}
			assert.Equal(t, 20, calls)
		})
	}
}

func TestRateLimiter_LimitExceeded(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 3}, zap.NewNop())
	h := rl.LimitByIP(okHandler(nil))

	var limited *httptest.ResponseRecorder
	ok := 0
	for i := 0; i < 10; i++ {
		w := hit(h, "/api/v1/deals", "192.168.1.100:5000", nil)
		if w.Code == http.StatusOK {
			ok++
		} else if w.Code == http.StatusTooManyRequests {
			limited = w
		}
	}

	assert.Equal(t, 3, ok)
	if assert.NotNil(t, limited) {
		assert.Equal(t, "60", limited.Header().Get("Retry-After"))
		assert.Equal(t, "application/json", limited.Header().Get("Content-Type"))
		assert.Contains(t, limited.Body.String(), domain.ErrorTypeRateLimited)
	}

	// another client keeps its own budget
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/deals", "192.168.1.101:5000", nil).Code)
}

func TestRateLimiter_AuthenticatedProfileLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 10,
	}, zap.NewNop())
	h := rl.Limit(okHandler(nil))

	asProfile := func(r *http.Request) {
		*r = *r.WithContext(auth.WithUserContext(context.Background(), &auth.UserContext{ProfileID: 7, CompanyID: 1}))
	}

	ok := 0
	for i := 0; i < 10; i++ {
		if hit(h, "/api/v1/tasks", "192.168.1.1:5000", asProfile).Code == http.StatusOK {
			ok++
		}
	}
	assert.Equal(t, 10, ok, "authenticated profiles use the higher limit")
}
