package analytics

import (
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
)

// EmptyCompanyAnalytics is the analytics page of a tenant with no data. It is
// built through the same folds as a populated page so both share one shape.
func EmptyCompanyAnalytics() domain.CompanyAnalyticsDTO {
	now := time.Now().UTC()
	return domain.CompanyAnalyticsDTO{
		Contacts:     ContactAnalytics(nil, nil, time.UTC),
		Deals:        DealAnalytics(nil),
		Interactions: InteractionAnalytics(nil, time.UTC),
		Products:     ProductAnalytics(nil, nil),
		Tasks:        TaskAnalytics(nil, now),
		Team:         TeamAnalytics(nil, nil),
	}
}

// EmptyDashboard is the dashboard with every list present and empty
func EmptyDashboard() domain.DashboardDTO {
	return domain.DashboardDTO{
		Users:    []domain.ProfileDTO{},
		Contacts: []domain.ContactDTO{},
		Tasks:    []domain.TaskDTO{},
		Deals:    []domain.DealDTO{},
		Rooms:    []domain.RoomOverviewDTO{},
	}
}
