package options

import (
	"errors"
	"testing"
	"time"

	"github.com/mingdom/folio/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	t.Run("expired call prices at intrinsic", func(t *testing.T) {
		price, err := Price(domain.Call, 120, 100, 0, 0.05, 0.3)
		require.NoError(t, err)
		require.Equal(t, float64(20), price)
	})

	t.Run("expired put prices at intrinsic", func(t *testing.T) {
		price, err := Price(domain.Put, 80, 100, -0.1, 0.05, 0.3)
		require.NoError(t, err)
		require.Equal(t, float64(20), price)
	})

	t.Run("expired out of the money option is worthless", func(t *testing.T) {
		price, err := Price(domain.Call, 80, 100, 0, 0.05, 0.3)
		require.NoError(t, err)
		require.Equal(t, float64(0), price)
	})

	t.Run("non-positive volatility is rejected", func(t *testing.T) {
		_, err := Price(domain.Call, 100, 100, 0.5, 0.05, 0)
		var invalid domain.InvalidInputError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, "volatility", invalid.Field)
	})

	t.Run("non-positive underlying is rejected", func(t *testing.T) {
		_, err := Price(domain.Call, 0, 100, 0.5, 0.05, 0.3)
		var invalid domain.InvalidInputError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("call price exceeds intrinsic before expiry", func(t *testing.T) {
		price, err := Price(domain.Call, 110, 100, 0.5, 0.05, 0.3)
		require.NoError(t, err)
		require.Greater(t, price, float64(10))
	})
}

func TestDelta(t *testing.T) {
	t.Run("call delta in [0,1], put delta in [-1,0]", func(t *testing.T) {
		for _, spot := range []float64{50, 90, 100, 110, 200} {
			callDelta, err := Delta(domain.Call, spot, 100, 0.5, 0.05, 0.3)
			require.NoError(t, err)
			require.GreaterOrEqual(t, callDelta, float64(0))
			require.LessOrEqual(t, callDelta, float64(1))

			putDelta, err := Delta(domain.Put, spot, 100, 0.5, 0.05, 0.3)
			require.NoError(t, err)
			require.GreaterOrEqual(t, putDelta, float64(-1))
			require.LessOrEqual(t, putDelta, float64(0))
		}
	})

	t.Run("put-call parity: call delta - put delta = 1", func(t *testing.T) {
		for _, spot := range []float64{70, 100, 140} {
			callDelta, err := Delta(domain.Call, spot, 100, 0.5, 0.05, 0.3)
			require.NoError(t, err)
			putDelta, err := Delta(domain.Put, spot, 100, 0.5, 0.05, 0.3)
			require.NoError(t, err)
			require.InDelta(t, 1, callDelta-putDelta, 1e-6)
		}
	})

	t.Run("deep in the money call delta approaches 1", func(t *testing.T) {
		delta, err := Delta(domain.Call, 10000, 100, 0.5, 0.05, 0.3)
		require.NoError(t, err)
		require.Greater(t, delta, 0.999)
	})

	t.Run("deep out of the money call delta approaches 0", func(t *testing.T) {
		delta, err := Delta(domain.Call, 1, 100, 0.5, 0.05, 0.3)
		require.NoError(t, err)
		require.Less(t, delta, 0.001)
	})

	t.Run("expired deltas collapse to moneyness", func(t *testing.T) {
		delta, err := Delta(domain.Call, 120, 100, 0, 0.05, 0.3)
		require.NoError(t, err)
		require.Equal(t, float64(1), delta)

		delta, err = Delta(domain.Put, 80, 100, 0, 0.05, 0.3)
		require.NoError(t, err)
		require.Equal(t, float64(-1), delta)
	})
}

func TestImpliedVolatility(t *testing.T) {
	t.Run("round-trips the pricing formula", func(t *testing.T) {
		for _, vol := range []float64{0.08, 0.2, 0.5, 1.0, 1.9} {
			price, err := Price(domain.Call, 100, 100, 0.5, 0.05, vol)
			require.NoError(t, err)

			iv, err := ImpliedVolatility(price, domain.Call, 100, 100, 0.5, 0.05)
			require.NoError(t, err)
			require.InDelta(t, vol, iv, 1e-3)
		}
	})

	t.Run("round-trips for puts", func(t *testing.T) {
		price, err := Price(domain.Put, 95, 100, 0.25, 0.05, 0.4)
		require.NoError(t, err)

		iv, err := ImpliedVolatility(price, domain.Put, 95, 100, 0.25, 0.05)
		require.NoError(t, err)
		require.InDelta(t, 0.4, iv, 1e-3)
	})

	t.Run("price at or below intrinsic returns the vol floor", func(t *testing.T) {
		// Intrinsic is 20; the solver cannot converge below it.
		iv, err := ImpliedVolatility(15, domain.Call, 120, 100, 0.5, 0.05)
		require.NoError(t, err)
		require.Equal(t, volatilityFloor, iv)
	})

	t.Run("expired contract has no time value to solve against", func(t *testing.T) {
		_, err := ImpliedVolatility(5, domain.Call, 100, 100, -0.1, 0.05)
		var noTime domain.NoTimeValueError
		require.ErrorAs(t, err, &noTime)
		// The bare solver only sees a year fraction, so it must not
		// invent a contract identity.
		require.Empty(t, noTime.Symbol)
		require.True(t, noTime.Expiry.IsZero())
		require.Equal(t, "contract is expired: no time value to solve against", noTime.Error())
	})

	t.Run("non-positive market price is rejected", func(t *testing.T) {
		_, err := ImpliedVolatility(0, domain.Call, 100, 100, 0.5, 0.05)
		var invalid domain.InvalidInputError
		require.ErrorAs(t, err, &invalid)
	})
}

func TestEstimateVolatilityWithSkew(t *testing.T) {
	t.Run("further out of the money means higher vol", func(t *testing.T) {
		atm := EstimateVolatilityWithSkew(domain.Call, 100, 100, 0.5)
		otm := EstimateVolatilityWithSkew(domain.Call, 100, 130, 0.5)
		farOtm := EstimateVolatilityWithSkew(domain.Call, 100, 160, 0.5)
		require.Less(t, atm, otm)
		require.Less(t, otm, farOtm)
	})

	t.Run("near-dated contracts get a term bump", func(t *testing.T) {
		nearDated := EstimateVolatilityWithSkew(domain.Put, 100, 100, 0.05)
		farDated := EstimateVolatilityWithSkew(domain.Put, 100, 100, 0.5)
		require.Greater(t, nearDated, farDated)
	})

	t.Run("estimate stays within the clamp band", func(t *testing.T) {
		for _, strike := range []float64{10, 100, 1000} {
			for _, ttl := range []float64{0.01, 0.5, 3} {
				iv := EstimateVolatilityWithSkew(domain.Call, 100, strike, ttl)
				require.GreaterOrEqual(t, iv, 0.05)
				require.LessOrEqual(t, iv, 1.5)
			}
		}
	})
}

func TestPositionImpliedVolatility(t *testing.T) {
	t.Run("solves from the last traded price", func(t *testing.T) {
		want := 0.35
		price, err := Price(domain.Call, 100, 100, 0.5, 0.05, want)
		require.NoError(t, err)

		pos := domain.OptionPosition{
			Underlying: "AAPL",
			OptionType: domain.Call,
			Strike:     100,
			Expiry:     time.Now().UTC().AddDate(0, 6, 0),
			Quantity:   1,
			LastPrice:  price,
		}
		iv, err := PositionImpliedVolatility(pos, 100, 0.05)
		require.NoError(t, err)
		// Half a year by AddDate is not exactly 0.5, so the tolerance
		// is looser than the solver's.
		require.InDelta(t, want, iv, 0.01)
	})

	t.Run("expired position carries its symbol and expiry on the error", func(t *testing.T) {
		expiry := time.Date(2025, time.January, 17, 0, 0, 0, 0, time.UTC)
		pos := domain.OptionPosition{
			Underlying: "AAPL",
			OptionType: domain.Call,
			Strike:     150,
			Expiry:     expiry,
			Quantity:   1,
			LastPrice:  5.25,
		}
		_, err := PositionImpliedVolatility(pos, 155, 0.05)
		var noTime domain.NoTimeValueError
		require.ErrorAs(t, err, &noTime)
		require.Equal(t, "AAPL", noTime.Symbol)
		require.Equal(t, expiry, noTime.Expiry)
		require.Contains(t, noTime.Error(), "AAPL expired 2025-01-17")
	})
}

func TestPositionDelta(t *testing.T) {
	basePosition := domain.OptionPosition{
		Underlying: "AAPL",
		OptionType: domain.Call,
		Strike:     150,
		Expiry:     time.Now().UTC().AddDate(0, 6, 0),
		Quantity:   2,
		LastPrice:  12.50,
	}

	t.Run("short delta is the exact negation of long", func(t *testing.T) {
		iv := 0.3

		long := basePosition
		long.Quantity = 2
		longDelta, err := PositionDelta(long, 155, 0.05, &iv)
		require.NoError(t, err)

		short := basePosition
		short.Quantity = -2
		shortDelta, err := PositionDelta(short, 155, 0.05, &iv)
		require.NoError(t, err)

		require.Equal(t, longDelta, -shortDelta)
	})

	t.Run("signed delta stays within [-1,1]", func(t *testing.T) {
		iv := 0.3
		for _, quantity := range []int{-3, 1} {
			pos := basePosition
			pos.Quantity = quantity
			delta, err := PositionDelta(pos, 155, 0.05, &iv)
			require.NoError(t, err)
			require.GreaterOrEqual(t, delta, float64(-1))
			require.LessOrEqual(t, delta, float64(1))
		}
	})

	t.Run("falls back to skew estimate when last price has no solution", func(t *testing.T) {
		pos := basePosition
		pos.LastPrice = 0 // unusable market price

		delta, err := PositionDelta(pos, 155, 0.05, nil)
		require.NoError(t, err)
		require.Greater(t, delta, float64(0))
		require.LessOrEqual(t, delta, float64(1))
	})

	t.Run("non-positive underlying is rejected", func(t *testing.T) {
		_, err := PositionDelta(basePosition, 0, 0.05, nil)
		var invalid domain.InvalidInputError
		require.True(t, errors.As(err, &invalid))
	})
}
