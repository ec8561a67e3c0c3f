package handler

import (
	"net/http"
	"strings"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	logger         *zap.Logger
}

func NewProfileHandler(profileService *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profileService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list profiles")
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondWithError(w, http.StatusBadRequest, "Missing search query")
		return
	}
	profiles, err := h.profileService.Search(r.Context(), q, queryLimit(r, 20, 100))
	if err != nil {
		respondServiceError(w, h.logger, err, "search profiles")
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

func (h *ProfileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	profile, err := h.profileService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	profile, err := h.profileService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateRole promotes or demotes a profile. Routed behind RequireAdmin.
func (h *ProfileHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	profile, err := h.profileService.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		respondServiceError(w, h.logger, err, "update role")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Performance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	metrics, err := h.profileService.PerformanceMetrics(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get performance metrics")
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

func (h *ProfileHandler) TeamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.profileService.TeamStats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get team stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
