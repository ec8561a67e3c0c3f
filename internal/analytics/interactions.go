package analytics

import (
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
)

// InteractionTypeCounts counts interactions per type. The canonical types are
// always listed first; other types follow in first-seen order. An empty type
// counts as "other".
func InteractionTypeCounts(interactions []domain.Interaction) []domain.TypeCount {
	out := make([]domain.TypeCount, 0, len(domain.InteractionTypes))
	index := make(map[string]int, len(domain.InteractionTypes))
	for _, t := range domain.InteractionTypes {
		index[string(t)] = len(out)
		out = append(out, domain.TypeCount{Type: string(t)})
	}
	for _, in := range interactions {
		kind := in.Type
		if kind == "" {
			kind = string(domain.InteractionTypeOther)
		}
		i, ok := index[kind]
		if !ok {
			i = len(out)
			index[kind] = i
			out = append(out, domain.TypeCount{Type: kind})
		}
		out[i].Count++
	}
	return out
}

func interactionTimes(interactions []domain.Interaction) []time.Time {
	out := make([]time.Time, len(interactions))
	for i, in := range interactions {
		out[i] = in.CreatedAt
	}
	return out
}

// InteractionStats counts interactions over the last week and month and
// averages the total over a 30 day window
func InteractionStats(interactions []domain.Interaction, now time.Time) domain.InteractionStatsDTO {
	times := interactionTimes(interactions)
	return domain.InteractionStatsDTO{
		Total:         len(interactions),
		ThisWeek:      CountSince(times, Since(now, 7)),
		ThisMonth:     CountSince(times, Since(now, averageWindowDays)),
		ByType:        InteractionTypeCounts(interactions),
		AveragePerDay: perDay(len(interactions), averageWindowDays),
	}
}

// InteractionAnalytics builds the interactions section of the analytics page.
// interactions are expected newest first.
func InteractionAnalytics(interactions []domain.Interaction, loc *time.Location) domain.InteractionAnalyticsDTO {
	return domain.InteractionAnalyticsDTO{
		Total:   len(interactions),
		Recent:  mapper.ToInteractionDTOs(First(interactions, RecentLimit)),
		ByType:  InteractionTypeCounts(interactions),
		ByMonth: MonthBuckets(interactionTimes(interactions), loc),
	}
}
