package analytics

import (
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
)

// RoleCounts counts profiles per role with every role present
func RoleCounts(profiles []domain.Profile) map[string]int {
	counts := make(map[string]int, len(domain.ProfileRoles))
	for _, r := range domain.ProfileRoles {
		counts[string(r)] = 0
	}
	for _, p := range profiles {
		counts[string(p.Role)]++
	}
	return counts
}

// TeamStats counts the company's profiles by role
func TeamStats(profiles []domain.Profile) domain.TeamStatsDTO {
	roles := RoleCounts(profiles)
	return domain.TeamStatsDTO{
		Total:            len(profiles),
		Admins:           roles[string(domain.ProfileRoleAdmin)],
		Users:            roles[string(domain.ProfileRoleUser)],
		RoleDistribution: roles,
		Members:          mapper.ToProfileDTOs(profiles),
	}
}

// TopPerformers ranks profiles by the total value of the deals they own
func TopPerformers(profiles []domain.Profile, deals []domain.Deal) []domain.PerformerDTO {
	type tally struct {
		count int
		value float64
	}
	byOwner := make(map[int64]*tally, len(profiles))
	for _, d := range deals {
		t, ok := byOwner[d.ProfileID]
		if !ok {
			t = &tally{}
			byOwner[d.ProfileID] = t
		}
		t.count++
		t.value += d.Value
	}
	performers := make([]domain.PerformerDTO, 0, len(profiles))
	for _, p := range profiles {
		entry := domain.PerformerDTO{ProfileID: p.ID, Fullname: p.Fullname}
		if t, ok := byOwner[p.ID]; ok {
			entry.DealsCount = t.count
			entry.DealsValue = t.value
		}
		performers = append(performers, entry)
	}
	return TopN(performers, TopPerformersLimit, func(p domain.PerformerDTO) float64 {
		return p.DealsValue
	})
}

// TeamAnalytics builds the team section of the analytics page. Profiles carry
// no activity flag, so every member counts as active.
func TeamAnalytics(profiles []domain.Profile, deals []domain.Deal) domain.TeamAnalyticsDTO {
	return domain.TeamAnalyticsDTO{
		Total:         len(profiles),
		Active:        len(profiles),
		Members:       mapper.ToProfileDTOs(profiles),
		ByRole:        RoleCounts(profiles),
		TopPerformers: TopPerformers(profiles, deals),
	}
}
