package analytics

import (
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
)

// ProductPerformance summarizes the deals referencing product
func ProductPerformance(product *domain.Product, deals []domain.Deal) domain.ProductPerformanceDTO {
	perf := domain.ProductPerformanceDTO{Product: mapper.ToProductDTO(product)}
	for _, d := range deals {
		if d.ProductID == nil || *d.ProductID != product.ID {
			continue
		}
		perf.DealsCount++
		if d.Stage == domain.DealStageClosedWon {
			perf.WonDealsCount++
			perf.Revenue += d.Value
		}
	}
	perf.ConversionRate = Rate(perf.WonDealsCount, perf.DealsCount)
	return perf
}

// ProductAnalytics builds the products section of the analytics page.
// products are expected newest first; deals are the tenant's deals.
func ProductAnalytics(products []domain.Product, deals []domain.Deal) domain.ProductAnalyticsDTO {
	var total float64
	perf := make([]domain.ProductPerformanceDTO, 0, len(products))
	for i := range products {
		total += products[i].UnitPrice
		perf = append(perf, ProductPerformance(&products[i], deals))
	}
	return domain.ProductAnalyticsDTO{
		Total:      len(products),
		TotalValue: total,
		Recent:     mapper.ToProductDTOs(First(products, RecentLimit)),
		TopPerforming: TopN(perf, TopProductsLimit, func(p domain.ProductPerformanceDTO) float64 {
			return p.Revenue
		}),
	}
}
