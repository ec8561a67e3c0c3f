package handler

import (
	"net/http"

	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

// NotificationHandler handles HTTP requests for notifications
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List returns the caller's notifications, newest first. ?unread=true limits
// the result to notifications not yet seen.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.notificationService.List(r.Context(), unreadOnly)
	if err != nil {
		respondServiceError(w, h.logger, err, "list notifications")
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.Count(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "count notifications")
		return
	}
	respondJSON(w, http.StatusOK, count)
}

func (h *NotificationHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.notificationService.MarkSeen(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "mark notification seen")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllSeen(w http.ResponseWriter, r *http.Request) {
	marked, err := h.notificationService.MarkAllSeen(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "mark notifications seen")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"marked": marked})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.notificationService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
