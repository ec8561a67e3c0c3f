package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pulse-crm/crm-api/internal/config"
	"github.com/pulse-crm/crm-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileLookup resolves the CRM profile of an identity provider subject
type ProfileLookup interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	profiles     ProfileLookup
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.AuthConfig, profiles ProfileLookup, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(cfg),
		profiles:     profiles,
		logger:       logger,
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Authenticate validates the bearer token and attaches the caller's profile to
// the request context. Unknown subjects are rejected.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Unauthorized: missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtValidator.ValidateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		profile, err := m.profiles.GetByUserID(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				m.logger.Warn("no profile for token subject",
					zap.String("path", r.URL.Path),
					zap.String("subject", claims.Subject),
				)
				http.Error(w, "Unauthorized: unknown user", http.StatusUnauthorized)
				return
			}
			m.logger.Error("failed to resolve profile",
				zap.String("subject", claims.Subject),
				zap.Error(err),
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		userCtx := FromProfile(claims.Subject, profile)
		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int64("profile_id", userCtx.ProfileID),
			zap.Int64("company_id", userCtx.CompanyID),
			zap.String("role", string(userCtx.Role)),
			zap.Duration("auth_duration", time.Since(start)),
		)

		reportIdentity(r.Context(), userCtx)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireAdmin middleware ensures the caller administers their company
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no user context", http.StatusForbidden)
			return
		}
		if !userCtx.IsAdmin() {
			http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
