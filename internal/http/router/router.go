package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/pulse-crm/crm-api/internal/auth"
	"github.com/pulse-crm/crm-api/internal/config"
	"github.com/pulse-crm/crm-api/internal/database"
	"github.com/pulse-crm/crm-api/internal/http/handler"
	"github.com/pulse-crm/crm-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers groups every HTTP handler mounted under /api/v1
type Handlers struct {
	Company      *handler.CompanyHandler
	Profile      *handler.ProfileHandler
	Contact      *handler.ContactHandler
	Deal         *handler.DealHandler
	Product      *handler.ProductHandler
	Task         *handler.TaskHandler
	Interaction  *handler.InteractionHandler
	Room         *handler.RoomHandler
	Discussion   *handler.DiscussionHandler
	Notification *handler.NotificationHandler
	File         *handler.FileHandler
	Dashboard    *handler.DashboardHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health with pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		stats, err := database.HealthCheckWithStats(ctx, rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Readiness across dependencies
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]interface{})
		status, code := "healthy", http.StatusOK
		if err := database.HealthCheck(ctx, rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			status, code = "unhealthy", http.StatusServiceUnavailable
		} else {
			checks["database"] = map[string]interface{}{"status": "healthy"}
		}

		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	h := rt.handlers
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)
		if d := rt.cfg.Server.RequestTimeoutDuration(); d > 0 {
			r.Use(chimw.Timeout(d))
		}

		// Company
		r.Get("/companies/current", h.Company.GetCurrent)
		r.With(rt.authMiddleware.RequireAdmin).Put("/companies/current", h.Company.UpdateCurrent)

		// Profiles
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.Profile.List)
			r.Get("/search", h.Profile.Search)
			r.Get("/{id}", h.Profile.GetByID)
			r.Put("/{id}", h.Profile.Update)
			r.With(rt.authMiddleware.RequireAdmin).Put("/{id}/role", h.Profile.UpdateRole)
			r.Get("/{id}/performance", h.Profile.Performance)
		})
		r.Get("/team/stats", h.Profile.TeamStats)

		// Contacts
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.Contact.List)
			r.Post("/", h.Contact.Create)
			r.Get("/search", h.Contact.Search)
			r.Get("/stats", h.Contact.Stats)
			r.Get("/export", h.Contact.Export)
			r.Post("/import", h.Contact.Import)
			r.Get("/{id}", h.Contact.Get)
			r.Put("/{id}", h.Contact.Update)
			r.Delete("/{id}", h.Contact.Delete)
		})

		// Deals
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", h.Deal.List)
			r.Post("/", h.Deal.Create)
			r.Get("/search", h.Deal.Search)
			r.Get("/pipeline", h.Deal.Pipeline)
			r.Get("/analytics", h.Deal.Analytics)
			r.Get("/{id}", h.Deal.Get)
			r.Put("/{id}", h.Deal.Update)
			r.Delete("/{id}", h.Deal.Delete)
			r.Get("/{id}/interactions", h.Deal.Interactions)
		})

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Post("/", h.Product.Create)
			r.Get("/analytics", h.Product.Analytics)
			r.Get("/{id}", h.Product.Get)
			r.Put("/{id}", h.Product.Update)
			r.Delete("/{id}", h.Product.Delete)
		})

		// Tasks
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.Task.List)
			r.Post("/", h.Task.Create)
			r.Get("/mine", h.Task.ListMine)
			r.Get("/stats", h.Task.Stats)
			r.Get("/analytics", h.Task.Analytics)
			r.Get("/{id}", h.Task.Get)
			r.Put("/{id}", h.Task.Update)
			r.Delete("/{id}", h.Task.Delete)
			r.Post("/{id}/complete", h.Task.Complete)
			r.Post("/{id}/assign", h.Task.Assign)
		})

		// Interactions
		r.Route("/interactions", func(r chi.Router) {
			r.Get("/", h.Interaction.List)
			r.Post("/", h.Interaction.Create)
			r.Get("/stats", h.Interaction.Stats)
			r.Get("/analytics", h.Interaction.Analytics)
			r.Get("/{id}", h.Interaction.Get)
			r.Put("/{id}", h.Interaction.Update)
			r.Delete("/{id}", h.Interaction.Delete)
		})

		// Rooms and messages
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.Room.Overview)
			r.Post("/", h.Room.Create)
			r.Delete("/{id}", h.Room.Delete)
			r.Post("/{id}/leave", h.Room.Leave)
			r.Get("/{id}/members", h.Room.Members)
			r.Post("/{id}/members", h.Room.AddMember)
			r.Delete("/{id}/members/{profileId}", h.Room.RemoveMember)
			r.Get("/{id}/messages", h.Room.Messages)
			r.Post("/{id}/messages", h.Room.Send)
			r.Post("/{id}/views", h.Room.MarkViewed)
			r.Get("/{id}/unread", h.Room.Unread)
		})
		r.Put("/messages/{id}", h.Room.UpdateMessage)
		r.Delete("/messages/{id}", h.Room.DeleteMessage)

		// Discussions
		r.Route("/discussions", func(r chi.Router) {
			r.Get("/", h.Discussion.List)
			r.Post("/", h.Discussion.Create)
			r.Get("/{id}", h.Discussion.Get)
			r.Put("/{id}", h.Discussion.Rename)
			r.Delete("/{id}", h.Discussion.Delete)
			r.Get("/{id}/chats", h.Discussion.Chats)
			r.Post("/{id}/chats", h.Discussion.AddChat)
		})
		r.Delete("/chats/{id}", h.Discussion.DeleteChat)

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notification.List)
			r.Get("/count", h.Notification.Count)
			r.Post("/seen", h.Notification.MarkAllSeen)
			r.Post("/{id}/seen", h.Notification.MarkSeen)
			r.Delete("/{id}", h.Notification.Delete)
		})

		// Files
		r.Route("/files", func(r chi.Router) {
			r.Post("/", h.File.Upload)
			r.Get("/{id}", h.File.GetByID)
			r.Get("/{id}/download", h.File.Download)
		})

		// Pages
		r.Get("/analytics", h.Dashboard.Analytics)
		r.Get("/dashboard", h.Dashboard.Dashboard)
	})

	return r
}
