package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
	"github.com/pulse-crm/crm-api/internal/config"
	"go.uber.org/zap"
)

// Headers browsers must be able to read from API responses: request tracing
// and contact export metadata
var crmExposedHeaders = []string{
	RequestIDHeader,
	"Location",
	"Content-Disposition",
	"X-Storage-Key",
	"X-Export-Count",
}

func isLocalEnvironment(environment string) bool {
	return environment == "" || environment == "development" || environment == "local"
}

// originPolicy decides which origins may call the API. Without configured
// origins, local environments accept any origin and deployed ones accept none.
func originPolicy(origins []string, environment string, logger *zap.Logger) func(*http.Request, string) bool {
	anyOrigin := func(_ *http.Request, origin string) bool { return origin != "" }

	switch {
	case slices.Contains(origins, "*"):
		if !isLocalEnvironment(environment) {
			logger.Warn("CORS allows every origin outside development",
				zap.String("environment", environment))
		}
		return anyOrigin
	case len(origins) > 0:
		logger.Info("CORS configured with explicit origins", zap.Strings("origins", origins))
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			allowed[o] = struct{}{}
		}
		return func(_ *http.Request, origin string) bool {
			_, ok := allowed[origin]
			return ok
		}
	case isLocalEnvironment(environment):
		logger.Info("CORS allows all origins in development mode")
		return anyOrigin
	default:
		logger.Warn("CORS has no allowed origins; cross-origin requests are denied",
			zap.String("environment", environment))
		return func(*http.Request, string) bool { return false }
	}
}

// CORS returns a CORS middleware configured from the application config
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	exposed := slices.Clone(cfg.ExposedHeaders)
	for _, h := range crmExposedHeaders {
		if !slices.Contains(exposed, h) {
			exposed = append(exposed, h)
		}
	}

	return cors.Handler(cors.Options{
		AllowOriginFunc:  originPolicy(cfg.AllowedOrigins, environment, logger),
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   exposed,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
