package portfolio

import (
	"sort"
	"time"

	"github.com/mingdom/folio/internal/domain"
	"github.com/mingdom/folio/internal/options"
	"github.com/shopspring/decimal"
)

// PositionShock is the per-position detail of one sweep point.
type PositionShock struct {
	Symbol        string  `json:"symbol"`
	AdjustedPrice float64 `json:"adjustedPrice"`
	DeltaExposure float64 `json:"deltaExposure"`
	Value         float64 `json:"value"`
}

// SimulationPoint is the portfolio recomputed under one hypothetical
// index move.
type SimulationPoint struct {
	SPYChange         float64                 `json:"spyChange"`
	PortfolioValue    float64                 `json:"portfolioValue"`
	PortfolioExposure float64                 `json:"portfolioExposure"`
	Summary           domain.PortfolioSummary `json:"summary"`
	Positions         []PositionShock         `json:"positions"`
}

// SimulateWithSPYChanges reprices the whole portfolio at each
// hypothetical index change. Every non-index underlying moves by its
// beta-scaled change, price * (1 + c*beta); the index itself moves 1:1,
// price * (1 + c) - its beta against itself is 1 by definition and must
// not be applied a second time.
//
// Option deltas are re-solved at each adjusted price (volatility held
// at the base-price solution), so the response curve is intentionally
// non-linear. Each point is recomputed independently from the base
// snapshot; there is no carried state between grid points.
func SimulateWithSPYChanges(
	groups []*domain.PortfolioGroup,
	spyChanges []float64,
	cashLike []domain.CashLikePosition,
	pendingActivity decimal.Decimal,
	indexTicker string,
	riskFreeRate float64,
) []SimulationPoint {
	changes := append([]float64{}, spyChanges...)
	sort.Float64s(changes)

	// Solve each option's volatility once at the base price so the
	// sweep moves price, not vol.
	baseVols := make(map[string][]*float64, len(groups))
	for _, g := range groups {
		vols := make([]*float64, len(g.OptionPositions))
		for i, opt := range g.OptionPositions {
			v := options.ResolveVolatility(opt, g.UnderlyingPrice(), riskFreeRate)
			vols[i] = &v
		}
		baseVols[g.Ticker] = vols
	}

	now := time.Now().UTC()
	cashValue := decimal.Zero
	for _, c := range cashLike {
		cashValue = cashValue.Add(c.Value)
	}
	cashFloat := cashValue.Add(pendingActivity).InexactFloat64()

	points := make([]SimulationPoint, 0, len(changes))
	for _, change := range changes {
		shockedGroups := make([]*domain.PortfolioGroup, 0, len(groups))
		positionDetail := []PositionShock{}
		portfolioValue := cashFloat

		for _, g := range groups {
			factor := 1 + change*g.Beta
			if g.Ticker == indexTicker {
				factor = 1 + change
			}
			// A high-beta name under an extreme shock can push the
			// adjusted price through zero; floor it instead.
			if factor < 0.01 {
				factor = 0.01
			}
			adjustedPrice := g.UnderlyingPrice() * factor

			spec := GroupSpec{
				Ticker:  g.Ticker,
				Stock:   g.StockPosition,
				Options: g.OptionPositions,
				Beta:    g.Beta,
			}
			shocked := CreateGroup(spec, adjustedPrice, riskFreeRate, baseVols[g.Ticker])
			shockedGroups = append(shockedGroups, shocked)

			if shocked.StockPosition != nil {
				stockValue := shocked.StockPosition.MarketExposure()
				portfolioValue += stockValue
				positionDetail = append(positionDetail, PositionShock{
					Symbol:        shocked.Ticker,
					AdjustedPrice: adjustedPrice,
					DeltaExposure: stockValue,
					Value:         stockValue,
				})
			}

			// The base vols and OptionExposureList are index-aligned
			// with the option list CreateGroup kept. The pinned vols
			// and floored price mean no option drops out mid-sweep;
			// if that ever stops holding, skip the per-option detail
			// rather than attribute vols to the wrong contracts.
			vols := baseVols[g.Ticker]
			if len(shocked.OptionPositions) != len(vols) ||
				len(shocked.OptionExposureList) != len(shocked.OptionPositions) {
				continue
			}

			for i, opt := range shocked.OptionPositions {
				vol := *vols[i]
				price, err := options.Price(opt.OptionType, adjustedPrice, opt.Strike, opt.TimeToExpiry(now), riskFreeRate, vol)
				if err != nil {
					continue
				}
				optionValue := price * domain.ContractSize * float64(opt.Quantity)
				portfolioValue += optionValue
				positionDetail = append(positionDetail, PositionShock{
					Symbol:        opt.Description,
					AdjustedPrice: adjustedPrice,
					DeltaExposure: shocked.OptionExposureList[i].DeltaExposure,
					Value:         optionValue,
				})
			}
		}

		summary := BuildSummary(shockedGroups, cashLike, pendingActivity)
		points = append(points, SimulationPoint{
			SPYChange:         change,
			PortfolioValue:    portfolioValue,
			PortfolioExposure: summary.BetaAdjustedExposure.Net,
			Summary:           summary,
			Positions:         positionDetail,
		})
	}

	return points
}

// DefaultSPYChanges is the grid the UI sweeps by default: -30% to +30%
// in 5% steps.
func DefaultSPYChanges() []float64 {
	changes := []float64{}
	for c := -30; c <= 30; c += 5 {
		changes = append(changes, float64(c)/100)
	}
	return changes
}
