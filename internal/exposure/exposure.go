// Package exposure holds the canonical per-position exposure formulas.
// Every call site routes through here - inline reimplementations of
// notional or sign handling are how the old divergent-figures bugs
// happened.
package exposure

import (
	"math"

	"github.com/mingdom/folio/internal/domain"
	"github.com/mingdom/folio/internal/options"
)

// NotionalValue is the single source of truth for option notional:
// 100 * |quantity| * underlying price. Always positive; direction lives
// in the delta, not here.
func NotionalValue(quantity int, underlyingPrice float64) float64 {
	return domain.ContractSize * math.Abs(float64(quantity)) * underlyingPrice
}

// SignedNotionalValue is the legacy strike-based figure, kept only for
// backward-compatible comparisons against old exports. Not used in any
// exposure math.
func SignedNotionalValue(quantity int, strike float64) float64 {
	return domain.ContractSize * float64(quantity) * strike
}

// OptionExposure computes the exposure set for one option position.
// The quantity sign arrives embedded in the position delta, so delta
// exposure is a plain product - applying the sign again here would
// double it.
func OptionExposure(pos domain.OptionPosition, underlyingPrice, beta, riskFreeRate float64, impliedVolatility *float64) (domain.OptionExposures, error) {
	signedDelta, err := options.PositionDelta(pos, underlyingPrice, riskFreeRate, impliedVolatility)
	if err != nil {
		return domain.OptionExposures{}, err
	}

	notional := NotionalValue(pos.Quantity, underlyingPrice)
	deltaExposure := signedDelta * notional

	return domain.OptionExposures{
		Delta:                signedDelta,
		NotionalValue:        notional,
		DeltaExposure:        deltaExposure,
		BetaAdjustedExposure: deltaExposure * beta,
	}, nil
}
