package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

type DealHandler struct {
	dealService        *service.DealService
	interactionService *service.InteractionService
	logger             *zap.Logger
}

func NewDealHandler(dealService *service.DealService, interactionService *service.InteractionService, logger *zap.Logger) *DealHandler {
	return &DealHandler{
		dealService:        dealService,
		interactionService: interactionService,
		logger:             logger,
	}
}

// List returns the company's deals, optionally narrowed to one stage
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	stage := domain.DealStage(r.URL.Query().Get("stage"))
	if stage != "" && !stage.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid stage")
		return
	}
	deals, err := h.dealService.List(r.Context(), stage)
	if err != nil {
		respondServiceError(w, h.logger, err, "list deals")
		return
	}
	respondJSON(w, http.StatusOK, deals)
}

func (h *DealHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondWithError(w, http.StatusBadRequest, "Missing search query")
		return
	}
	deals, err := h.dealService.Search(r.Context(), q, queryLimit(r, 20, 100))
	if err != nil {
		respondServiceError(w, h.logger, err, "search deals")
		return
	}
	respondJSON(w, http.StatusOK, deals)
}

func (h *DealHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dealService.PipelineStats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get pipeline stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *DealHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	result, err := h.dealService.Analytics(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get deal analytics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deal, err := h.dealService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get deal")
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

func (h *DealHandler) Interactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.interactionService.ListByDeal(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list deal interactions")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	deal, err := h.dealService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create deal")
		return
	}
	w.Header().Set("Location", "/api/v1/deals/"+strconv.FormatInt(deal.ID, 10))
	respondJSON(w, http.StatusCreated, deal)
}

func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateDealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	deal, err := h.dealService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update deal")
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.dealService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete deal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
