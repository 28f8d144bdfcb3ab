package exposure

import (
	"testing"
	"time"

	"github.com/mingdom/folio/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestNotionalValue(t *testing.T) {
	t.Run("100 shares per contract", func(t *testing.T) {
		require.Equal(t, float64(50000), NotionalValue(10, 50))
	})

	t.Run("magnitude is sign-independent", func(t *testing.T) {
		require.Equal(t, NotionalValue(10, 50), NotionalValue(-10, 50))
	})
}

func TestSignedNotionalValue(t *testing.T) {
	t.Run("keeps the quantity sign and uses strike", func(t *testing.T) {
		require.Equal(t, float64(-150000), SignedNotionalValue(-10, 150))
	})
}

func TestOptionExposure(t *testing.T) {
	iv := 0.3
	base := domain.OptionPosition{
		Underlying: "AAPL",
		OptionType: domain.Call,
		Strike:     150,
		Expiry:     time.Now().UTC().AddDate(0, 6, 0),
		LastPrice:  12.50,
	}

	t.Run("delta exposure is signed delta times notional, once", func(t *testing.T) {
		pos := base
		pos.Quantity = 2

		exposures, err := OptionExposure(pos, 155, 1.2, 0.05, &iv)
		require.NoError(t, err)

		require.Equal(t, NotionalValue(2, 155), exposures.NotionalValue)
		require.InDelta(t, exposures.Delta*exposures.NotionalValue, exposures.DeltaExposure, 1e-9)
		require.InDelta(t, exposures.DeltaExposure*1.2, exposures.BetaAdjustedExposure, 1e-9)
		require.Greater(t, exposures.DeltaExposure, float64(0))
	})

	t.Run("short exposure is the exact negation of long", func(t *testing.T) {
		long := base
		long.Quantity = 3
		short := base
		short.Quantity = -3

		longExposures, err := OptionExposure(long, 155, 1.0, 0.05, &iv)
		require.NoError(t, err)
		shortExposures, err := OptionExposure(short, 155, 1.0, 0.05, &iv)
		require.NoError(t, err)

		require.Equal(t, longExposures.NotionalValue, shortExposures.NotionalValue)
		require.Equal(t, longExposures.DeltaExposure, -shortExposures.DeltaExposure)
		require.Equal(t, longExposures.BetaAdjustedExposure, -shortExposures.BetaAdjustedExposure)
	})

	t.Run("short put delta exposure is positive", func(t *testing.T) {
		pos := base
		pos.OptionType = domain.Put
		pos.Quantity = -1

		exposures, err := OptionExposure(pos, 155, 1.0, 0.05, &iv)
		require.NoError(t, err)
		require.Greater(t, exposures.DeltaExposure, float64(0))
	})

	t.Run("invalid underlying propagates", func(t *testing.T) {
		pos := base
		pos.Quantity = 1

		_, err := OptionExposure(pos, -1, 1.0, 0.05, &iv)
		var invalid domain.InvalidInputError
		require.ErrorAs(t, err, &invalid)
	})
}

func TestStockExposure(t *testing.T) {
	t.Run("short stock exposure keeps its sign", func(t *testing.T) {
		pos := domain.StockPosition{Ticker: "TSLA", Quantity: -10, Price: 50, Beta: 2}
		require.Equal(t, float64(-500), pos.MarketExposure())
		require.Equal(t, float64(-1000), pos.BetaAdjustedExposure())
	})

	t.Run("long stock exposure", func(t *testing.T) {
		pos := domain.StockPosition{Ticker: "AAPL", Quantity: 100, Price: 150, Beta: 1.2}
		require.Equal(t, float64(15000), pos.MarketExposure())
		require.InDelta(t, 18000, pos.BetaAdjustedExposure(), 1e-9)
	})
}
