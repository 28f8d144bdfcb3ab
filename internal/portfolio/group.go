// Package portfolio builds groups and summaries from priced positions
// and runs the market-shock simulator over them.
package portfolio

import (
	"fmt"

	"github.com/mingdom/folio/internal/domain"
	"github.com/mingdom/folio/internal/exposure"
)

// GroupSpec is the raw material for one underlying's group: the
// positions sharing a ticker plus the beta computed for it.
type GroupSpec struct {
	Ticker  string
	Stock   *domain.StockPosition
	Options []domain.OptionPosition
	Beta    float64
}

// CreateGroup prices every position in the spec at underlyingPrice and
// caches the exposures on the group. ivOverrides, when non-nil, is
// index-aligned with spec.Options and pins each option's volatility
// (the simulator uses this to hold vol fixed across a sweep).
//
// A single option that fails to price does not fail the group: it is
// recorded under Excluded and skipped, so one bad contract cannot take
// down the whole portfolio.
func CreateGroup(spec GroupSpec, underlyingPrice, riskFreeRate float64, ivOverrides []*float64) *domain.PortfolioGroup {
	group := &domain.PortfolioGroup{
		Ticker: spec.Ticker,
		Beta:   spec.Beta,
	}

	netExposure := 0.0
	betaAdjusted := 0.0

	if spec.Stock != nil {
		stock := spec.Stock.RecalculateWithPrice(underlyingPrice)
		stock.Beta = spec.Beta
		group.StockPosition = &stock
		netExposure += stock.MarketExposure()
		betaAdjusted += stock.BetaAdjustedExposure()
	}

	for i, opt := range spec.Options {
		priced := opt.RecalculateWithPrice(underlyingPrice)

		var iv *float64
		if ivOverrides != nil {
			iv = ivOverrides[i]
		}

		exposures, err := exposure.OptionExposure(priced, underlyingPrice, spec.Beta, riskFreeRate, iv)
		if err != nil {
			group.Excluded = append(group.Excluded, domain.ExcludedPosition{
				Symbol: priced.Description,
				Reason: fmt.Sprintf("pricing failed: %v", err),
			})
			continue
		}

		group.OptionPositions = append(group.OptionPositions, priced)
		group.OptionExposureList = append(group.OptionExposureList, exposures)
		netExposure += exposures.DeltaExposure
		betaAdjusted += exposures.BetaAdjustedExposure
	}

	group.NetExposure = netExposure
	group.BetaAdjustedExposure = betaAdjusted
	return group
}
