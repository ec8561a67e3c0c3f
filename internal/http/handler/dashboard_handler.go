package handler

import (
	"net/http"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

// DashboardHandler serves the aggregated analytics and dashboard pages. A
// failed aggregation never fails the page: the zero-valued shape is returned
// and the error is logged.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	analyticsService *service.AnalyticsService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, analyticsService *service.AnalyticsService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		analyticsService: analyticsService,
		logger:           logger,
	}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboardService.Overview(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard", zap.Error(err))
		empty := analytics.EmptyDashboard()
		respondJSON(w, http.StatusOK, &empty)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	page, err := h.analyticsService.Company(r.Context())
	if err != nil {
		h.logger.Error("failed to build company analytics", zap.Error(err))
		empty := analytics.EmptyCompanyAnalytics()
		respondJSON(w, http.StatusOK, &empty)
		return
	}
	respondJSON(w, http.StatusOK, page)
}
