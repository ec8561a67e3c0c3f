package analytics

import (
	"slices"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
)

// DealPipeline buckets deals by stage. Every pipeline stage is present, in
// funnel order, even with no deals.
func DealPipeline(deals []domain.Deal) []domain.StageBucket {
	index := make(map[domain.DealStage]int, len(domain.DealStages))
	buckets := make([]domain.StageBucket, len(domain.DealStages))
	for i, stage := range domain.DealStages {
		buckets[i] = domain.StageBucket{Stage: stage}
		index[stage] = i
	}
	for _, d := range deals {
		i, ok := index[d.Stage]
		if !ok {
			continue
		}
		buckets[i].Count++
		buckets[i].TotalValue += d.Value
	}
	for i := range buckets {
		if buckets[i].Count > 0 {
			buckets[i].AverageValue = buckets[i].TotalValue / float64(buckets[i].Count)
		}
	}
	return buckets
}

// PipelinePoints is the chart form of DealPipeline
func PipelinePoints(deals []domain.Deal) []domain.PipelinePoint {
	buckets := DealPipeline(deals)
	points := make([]domain.PipelinePoint, len(buckets))
	for i, b := range buckets {
		points[i] = domain.PipelinePoint{Stage: b.Stage, Count: b.Count, Value: b.TotalValue}
	}
	return points
}

// StageCounts counts deals per stage with every stage present
func StageCounts(deals []domain.Deal) map[string]int {
	counts := make(map[string]int, len(domain.DealStages))
	for _, stage := range domain.DealStages {
		counts[string(stage)] = 0
	}
	for _, d := range deals {
		counts[string(d.Stage)]++
	}
	return counts
}

// SummarizePipeline totals every deal and the closed_won subset
func SummarizePipeline(deals []domain.Deal) domain.PipelineSummary {
	s := domain.PipelineSummary{TotalDeals: len(deals)}
	for _, d := range deals {
		s.TotalValue += d.Value
		if d.Stage == domain.DealStageClosedWon {
			s.WonDeals++
			s.WonValue += d.Value
		}
	}
	s.ConversionRate = Rate(s.WonDeals, s.TotalDeals)
	return s
}

// PipelineStats builds the stage table and its summary
func PipelineStats(deals []domain.Deal) domain.PipelineStatsDTO {
	return domain.PipelineStatsDTO{
		Stages:  DealPipeline(deals),
		Summary: SummarizePipeline(deals),
	}
}

// DealAnalytics builds the deals section of the analytics page
func DealAnalytics(deals []domain.Deal) domain.DealAnalyticsDTO {
	var total float64
	var wins, open []domain.Deal
	for _, d := range deals {
		total += d.Value
		if d.Stage == domain.DealStageClosedWon {
			wins = append(wins, d)
		}
		if d.Stage != domain.DealStageClosedLost {
			open = append(open, d)
		}
	}

	slices.SortStableFunc(wins, func(a, b domain.Deal) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	return domain.DealAnalyticsDTO{
		Total:      len(deals),
		TotalValue: total,
		Pipeline:   PipelinePoints(deals),
		ByStage:    StageCounts(deals),
		RecentWins: mapper.ToDealDTOs(First(wins, RecentWinsLimit)),
		TopDeals: mapper.ToDealDTOs(TopN(open, TopDealsLimit, func(d domain.Deal) float64 {
			return d.Value
		})),
	}
}

// DealPerformance summarizes one profile's deals
func DealPerformance(deals []domain.Deal) domain.DealPerformance {
	p := domain.DealPerformance{Total: len(deals)}
	for _, d := range deals {
		if d.Stage == domain.DealStageClosedWon {
			p.Won++
			p.Value += d.Value
		}
	}
	p.ConversionRate = Rate(p.Won, p.Total)
	return p
}
