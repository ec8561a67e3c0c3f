package handler

import (
	"net/http"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type DiscussionHandler struct {
	discussionService *service.DiscussionService
	logger            *zap.Logger
}

func NewDiscussionHandler(discussionService *service.DiscussionService, logger *zap.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		discussionService: discussionService,
		logger:            logger,
	}
}

func (h *DiscussionHandler) List(w http.ResponseWriter, r *http.Request) {
	discussions, err := h.discussionService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list discussions")
		return
	}
	respondJSON(w, http.StatusOK, discussions)
}

func (h *DiscussionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDiscussionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	discussion, err := h.discussionService.Create(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, h.logger, err, "create discussion")
		return
	}
	respondJSON(w, http.StatusCreated, discussion)
}

func (h *DiscussionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	discussion, err := h.discussionService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get discussion")
		return
	}
	respondJSON(w, http.StatusOK, discussion)
}

func (h *DiscussionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateDiscussionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	discussion, err := h.discussionService.Rename(r.Context(), id, req.Name)
	if err != nil {
		respondServiceError(w, h.logger, err, "rename discussion")
		return
	}
	respondJSON(w, http.StatusOK, discussion)
}

func (h *DiscussionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.discussionService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete discussion")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DiscussionHandler) Chats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	chats, err := h.discussionService.Chats(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list chats")
		return
	}
	respondJSON(w, http.StatusOK, chats)
}

func (h *DiscussionHandler) AddChat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.SendChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	chat, err := h.discussionService.AddChat(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "add chat")
		return
	}
	respondJSON(w, http.StatusCreated, chat)
}

func (h *DiscussionHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.discussionService.DeleteChat(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
