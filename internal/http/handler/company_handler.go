package handler

import (
	"net/http"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type CompanyHandler struct {
	companyService *service.CompanyService
	logger         *zap.Logger
}

func NewCompanyHandler(companyService *service.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		logger:         logger,
	}
}

// GetCurrent returns the caller's company
func (h *CompanyHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	company, err := h.companyService.GetCurrent(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get company")
		return
	}
	respondJSON(w, http.StatusOK, company)
}

// UpdateCurrent changes the caller's company. Admin only.
func (h *CompanyHandler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateCompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	company, err := h.companyService.UpdateCurrent(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update company")
		return
	}
	respondJSON(w, http.StatusOK, company)
}
