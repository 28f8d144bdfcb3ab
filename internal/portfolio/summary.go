package portfolio

import (
	"github.com/mingdom/folio/internal/domain"
	"github.com/shopspring/decimal"
)

// BuildSummary partitions groups into long/short buckets by the sign of
// their net exposure and folds cash-like holdings and pending activity
// into separate buckets. Cash-like positions carry beta 0 and never
// touch the directional totals.
func BuildSummary(groups []*domain.PortfolioGroup, cashLike []domain.CashLikePosition, pendingActivity decimal.Decimal) domain.PortfolioSummary {
	var (
		longMarket, shortMarket float64
		longBeta, shortBeta     float64
	)

	totalValue := decimal.Zero
	excluded := []domain.ExcludedPosition{}

	for _, group := range groups {
		if group.NetExposure >= 0 {
			longMarket += group.NetExposure
			longBeta += group.BetaAdjustedExposure
		} else {
			shortMarket += group.NetExposure
			shortBeta += group.BetaAdjustedExposure
		}
		totalValue = totalValue.Add(group.Value())
		excluded = append(excluded, group.Excluded...)
	}

	cashValue := decimal.Zero
	for _, c := range cashLike {
		cashValue = cashValue.Add(c.Value)
	}

	totalValue = totalValue.Add(cashValue).Add(pendingActivity)

	return domain.PortfolioSummary{
		MarketExposure:       domain.NewExposureBreakdown(longMarket, shortMarket),
		BetaAdjustedExposure: domain.NewExposureBreakdown(longBeta, shortBeta),
		CashLikeValue:        cashValue,
		PendingActivityValue: pendingActivity,
		TotalValue:           totalValue,
		GroupCount:           len(groups),
		Excluded:             excluded,
	}
}
