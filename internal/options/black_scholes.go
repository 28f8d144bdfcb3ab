// Package options implements closed-form Black-Scholes pricing, an
// implied-volatility solver, and the position-delta orchestration used
// by the exposure calculators.
//
// Sign contract: Price and Delta are pure Greeks and know nothing about
// position direction. PositionDelta is the only place the quantity sign
// is applied. Exposure code downstream must not flip signs again.
package options

import (
	"errors"
	"math"
	"time"

	"github.com/mingdom/folio/internal/domain"
)

const (
	// Bisection bounds for the implied-volatility search.
	minVolatility = 0.001
	maxVolatility = 5.0

	ivTolerance     = 1e-4
	ivMaxIter       = 100
	volatilityFloor = 0.01
)

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func intrinsicValue(optionType domain.OptionType, underlyingPrice, strike float64) float64 {
	if optionType == domain.Call {
		return math.Max(underlyingPrice-strike, 0)
	}
	return math.Max(strike-underlyingPrice, 0)
}

func validateSpot(underlyingPrice, strike float64) error {
	if underlyingPrice <= 0 {
		return domain.InvalidInputError{Field: "underlyingPrice", Value: underlyingPrice, Reason: "must be positive"}
	}
	if strike <= 0 {
		return domain.InvalidInputError{Field: "strike", Value: strike, Reason: "must be positive"}
	}
	return nil
}

// Price returns the Black-Scholes price of a European option. Expired
// contracts (timeToExpiry <= 0) price at intrinsic value instead of
// running the formula, which would divide by zero in d1.
func Price(optionType domain.OptionType, underlyingPrice, strike, timeToExpiry, riskFreeRate, volatility float64) (float64, error) {
	if err := validateSpot(underlyingPrice, strike); err != nil {
		return 0, err
	}
	if timeToExpiry <= 0 {
		return intrinsicValue(optionType, underlyingPrice, strike), nil
	}
	if volatility <= 0 {
		return 0, domain.InvalidInputError{Field: "volatility", Value: volatility, Reason: "must be positive"}
	}

	sqrtT := math.Sqrt(timeToExpiry)
	d1 := (math.Log(underlyingPrice/strike) + (riskFreeRate+0.5*volatility*volatility)*timeToExpiry) / (volatility * sqrtT)
	d2 := d1 - volatility*sqrtT

	if optionType == domain.Call {
		return underlyingPrice*normCDF(d1) - strike*math.Exp(-riskFreeRate*timeToExpiry)*normCDF(d2), nil
	}
	return strike*math.Exp(-riskFreeRate*timeToExpiry)*normCDF(-d2) - underlyingPrice*normCDF(-d1), nil
}

// Delta returns the unsigned mathematical delta: N(d1) in [0,1] for
// calls, N(d1)-1 in [-1,0] for puts. Position direction is applied by
// PositionDelta, never here.
func Delta(optionType domain.OptionType, underlyingPrice, strike, timeToExpiry, riskFreeRate, volatility float64) (float64, error) {
	if err := validateSpot(underlyingPrice, strike); err != nil {
		return 0, err
	}
	if timeToExpiry <= 0 {
		// Expired: delta collapses to 1/0 for calls, -1/0 for puts
		// depending on whether the contract finished in the money.
		if optionType == domain.Call {
			if underlyingPrice > strike {
				return 1, nil
			}
			return 0, nil
		}
		if underlyingPrice < strike {
			return -1, nil
		}
		return 0, nil
	}
	if volatility <= 0 {
		return 0, domain.InvalidInputError{Field: "volatility", Value: volatility, Reason: "must be positive"}
	}

	d1 := (math.Log(underlyingPrice/strike) + (riskFreeRate+0.5*volatility*volatility)*timeToExpiry) / (volatility * math.Sqrt(timeToExpiry))
	if optionType == domain.Call {
		return normCDF(d1), nil
	}
	return normCDF(d1) - 1, nil
}

// ImpliedVolatility bisects volatility until the Black-Scholes price
// matches marketPrice within tolerance. Prices at or below intrinsic
// value return the volatility floor immediately - the solver cannot
// converge below intrinsic.
func ImpliedVolatility(marketPrice float64, optionType domain.OptionType, underlyingPrice, strike, timeToExpiry, riskFreeRate float64) (float64, error) {
	if err := validateSpot(underlyingPrice, strike); err != nil {
		return 0, err
	}
	if marketPrice <= 0 {
		return 0, domain.InvalidInputError{Field: "marketPrice", Value: marketPrice, Reason: "must be positive"}
	}
	if timeToExpiry <= 0 {
		// Only the year fraction is known here; position-aware callers
		// go through PositionImpliedVolatility to get the contract
		// identity onto the error.
		return 0, domain.NoTimeValueError{}
	}
	if marketPrice <= intrinsicValue(optionType, underlyingPrice, strike) {
		return volatilityFloor, nil
	}

	lo, hi := minVolatility, maxVolatility
	for i := 0; i < ivMaxIter; i++ {
		mid := (lo + hi) / 2
		price, err := Price(optionType, underlyingPrice, strike, timeToExpiry, riskFreeRate, mid)
		if err != nil {
			return 0, err
		}
		diff := price - marketPrice
		if math.Abs(diff) < ivTolerance {
			return mid, nil
		}
		if diff > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}

	return (lo + hi) / 2, nil
}

// EstimateVolatilityWithSkew is the fallback when no usable market
// price exists to back IV out of. It is a parametric smile: ATM vol
// plus a quadratic bump in log-moneyness, plus a short-dated term bump,
// clamped to a sane band. An approximation, not calibrated to any real
// surface.
func EstimateVolatilityWithSkew(optionType domain.OptionType, underlyingPrice, strike, timeToExpiry float64) float64 {
	const (
		atmVol       = 0.30
		maxSmileBump = 0.45
		maxTermBump  = 0.15
		nearTermYrs  = 0.25
		clampLo      = 0.05
		clampHi      = 1.50
	)

	logMoneyness := math.Abs(math.Log(strike / underlyingPrice))
	smile := 1.2 * logMoneyness * logMoneyness
	if smile > maxSmileBump {
		smile = maxSmileBump
	}

	term := 0.0
	if timeToExpiry > 0 && timeToExpiry < nearTermYrs {
		term = maxTermBump * (nearTermYrs - timeToExpiry) / nearTermYrs
	}

	iv := atmVol + smile + term
	if iv < clampLo {
		iv = clampLo
	}
	if iv > clampHi {
		iv = clampHi
	}
	return iv
}

// PositionImpliedVolatility backs implied volatility out of the
// position's last traded price. Unlike the bare solver it knows which
// contract it is working on, so an expired position surfaces as a
// NoTimeValueError carrying the real symbol and expiry.
func PositionImpliedVolatility(pos domain.OptionPosition, underlyingPrice, riskFreeRate float64) (float64, error) {
	timeToExpiry := pos.TimeToExpiry(time.Now().UTC())
	if timeToExpiry <= 0 {
		return 0, domain.NoTimeValueError{Symbol: pos.Underlying, Expiry: pos.Expiry}
	}
	return ImpliedVolatility(pos.LastPrice, pos.OptionType, underlyingPrice, pos.Strike, timeToExpiry, riskFreeRate)
}

// PositionDelta returns the delta of an option position with the
// quantity sign folded in. Volatility resolution order: explicit
// override, implied from the last traded price, skew estimate.
func PositionDelta(pos domain.OptionPosition, underlyingPrice, riskFreeRate float64, impliedVolatility *float64) (float64, error) {
	if underlyingPrice <= 0 {
		return 0, domain.InvalidInputError{Field: "underlyingPrice", Value: underlyingPrice, Reason: "must be positive"}
	}

	timeToExpiry := pos.TimeToExpiry(time.Now().UTC())

	var vol float64
	if impliedVolatility != nil {
		vol = *impliedVolatility
	} else {
		iv, err := PositionImpliedVolatility(pos, underlyingPrice, riskFreeRate)
		if err != nil {
			var invalid domain.InvalidInputError
			var noTime domain.NoTimeValueError
			if !errors.As(err, &invalid) && !errors.As(err, &noTime) {
				return 0, err
			}
			iv = EstimateVolatilityWithSkew(pos.OptionType, underlyingPrice, pos.Strike, timeToExpiry)
		}
		vol = iv
	}

	rawDelta, err := Delta(pos.OptionType, underlyingPrice, pos.Strike, timeToExpiry, riskFreeRate, vol)
	if err != nil {
		return 0, err
	}

	if pos.Quantity >= 0 {
		return rawDelta, nil
	}
	return -rawDelta, nil
}

// ResolveVolatility returns the volatility PositionDelta would use for
// the position at the given underlying, without computing the delta.
// Simulation sweeps solve it once at the base price and hold it fixed
// across the grid.
func ResolveVolatility(pos domain.OptionPosition, underlyingPrice, riskFreeRate float64) float64 {
	iv, err := PositionImpliedVolatility(pos, underlyingPrice, riskFreeRate)
	if err != nil {
		return EstimateVolatilityWithSkew(pos.OptionType, underlyingPrice, pos.Strike, pos.TimeToExpiry(time.Now().UTC()))
	}
	return iv
}
