package handler

import (
	"net/http"
	"strconv"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type InteractionHandler struct {
	interactionService *service.InteractionService
	logger             *zap.Logger
}

func NewInteractionHandler(interactionService *service.InteractionService, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactionService: interactionService,
		logger:             logger,
	}
}

func (h *InteractionHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.interactionService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list interactions")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *InteractionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.interactionService.Stats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get interaction stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *InteractionHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	result, err := h.interactionService.Analytics(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get interaction analytics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *InteractionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.interactionService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get interaction")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *InteractionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInteractionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.interactionService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create interaction")
		return
	}
	w.Header().Set("Location", "/api/v1/interactions/"+strconv.FormatInt(item.ID, 10))
	respondJSON(w, http.StatusCreated, item)
}

func (h *InteractionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateInteractionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.interactionService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update interaction")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *InteractionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.interactionService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete interaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
