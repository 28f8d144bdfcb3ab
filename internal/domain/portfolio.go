package domain

import (
	"github.com/shopspring/decimal"
)

// OptionExposures is the computed exposure set for one option position.
// Delta is the position-signed delta, so DeltaExposure carries the
// long/short sign already - callers must not flip it again.
type OptionExposures struct {
	Delta                float64
	NotionalValue        float64
	DeltaExposure        float64
	BetaAdjustedExposure float64
}

// ExcludedPosition records a position that could not be priced. The
// portfolio keeps going without it, but the omission is surfaced
// distinctly from positions that were filtered on purpose.
type ExcludedPosition struct {
	Symbol string
	Reason string
}

// PortfolioGroup holds one underlying's stock position (optional) and
// its option positions, with exposures computed and cached at build
// time. Groups are rebuilt from scratch on every reload or reprice.
type PortfolioGroup struct {
	Ticker          string
	Beta            float64
	StockPosition   *StockPosition
	OptionPositions []OptionPosition

	// OptionExposureList is index-aligned with OptionPositions.
	OptionExposureList []OptionExposures

	// NetExposure is stock market exposure plus summed option delta
	// exposure, in dollars.
	NetExposure float64

	BetaAdjustedExposure float64

	Excluded []ExcludedPosition
}

func (g PortfolioGroup) DeepCopy() *PortfolioGroup {
	out := g
	if g.StockPosition != nil {
		stock := *g.StockPosition
		out.StockPosition = &stock
	}
	out.OptionPositions = append([]OptionPosition{}, g.OptionPositions...)
	out.OptionExposureList = append([]OptionExposures{}, g.OptionExposureList...)
	out.Excluded = append([]ExcludedPosition{}, g.Excluded...)
	return &out
}

// UnderlyingPrice is the spot price the group's exposures were last
// computed at.
func (g PortfolioGroup) UnderlyingPrice() float64 {
	if g.StockPosition != nil {
		return g.StockPosition.Price
	}
	if len(g.OptionPositions) > 0 {
		return g.OptionPositions[0].UnderlyingPrice
	}
	return 0
}

// Value is the group's mark-to-market value from the brokerage export:
// stock current value plus option current values.
func (g PortfolioGroup) Value() decimal.Decimal {
	total := decimal.Zero
	if g.StockPosition != nil {
		total = total.Add(g.StockPosition.CurrentValue)
	}
	for _, o := range g.OptionPositions {
		total = total.Add(o.CurrentValue)
	}
	return total
}

// ExposureBreakdown splits an exposure figure into directional buckets.
// Short holds the signed (negative) sum, so Net = Long + Short and
// Gross = Long - Short.
type ExposureBreakdown struct {
	Long  float64
	Short float64
	Net   float64
	Gross float64
}

func NewExposureBreakdown(long, short float64) ExposureBreakdown {
	return ExposureBreakdown{
		Long:  long,
		Short: short,
		Net:   long + short,
		Gross: long - short,
	}
}

// PortfolioSummary is the portfolio-level aggregate consumed by the UI
// and the simulator. It is rebuilt whole on every reload; nothing
// updates it incrementally.
type PortfolioSummary struct {
	MarketExposure       ExposureBreakdown
	BetaAdjustedExposure ExposureBreakdown

	// CashLikeValue is the face value of money-market style holdings,
	// kept out of the directional buckets above.
	CashLikeValue decimal.Decimal

	// PendingActivityValue is unsettled-trade cash filtered out of
	// position processing.
	PendingActivityValue decimal.Decimal

	// TotalValue is group values + cash-like + pending activity.
	TotalValue decimal.Decimal

	GroupCount int
	Excluded   []ExcludedPosition
}
