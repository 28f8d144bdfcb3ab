package marketdata

import (
	"context"
	"fmt"

	"github.com/mingdom/folio/internal/domain"
	"github.com/montanaflynn/stats"
)

// BetaCalculator regresses an asset's trailing daily returns against
// the market index's. It fails loudly when the overlap is too thin -
// silently returning beta 0 for missing data is how illiquid symbols
// used to get misclassified as cash.
type BetaCalculator struct {
	Provider        Provider
	Window          Period
	MinObservations int
}

func NewBetaCalculator(provider Provider, window Period, minObservations int) *BetaCalculator {
	return &BetaCalculator{
		Provider:        provider,
		Window:          window,
		MinObservations: minObservations,
	}
}

// Beta is cov(asset returns, market returns) / var(market returns) over
// the trailing window, computed on days both series traded.
func (b *BetaCalculator) Beta(ctx context.Context, ticker string) (float64, error) {
	assetPrices, err := b.Provider.FetchData(ctx, ticker, b.Window)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch history for %s: %w", ticker, err)
	}
	marketPrices, err := b.Provider.FetchMarketData(ctx, b.Window)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch market history: %w", err)
	}

	assetReturns, marketReturns := alignedReturns(assetPrices, marketPrices)
	if len(assetReturns) < b.MinObservations {
		return 0, domain.InsufficientDataError{
			Symbol:   ticker,
			Required: b.MinObservations,
			Got:      len(assetReturns),
		}
	}

	covariance, err := stats.Covariance(assetReturns, marketReturns)
	if err != nil {
		return 0, fmt.Errorf("failed to compute covariance for %s: %w", ticker, err)
	}
	variance, err := stats.SampleVariance(marketReturns)
	if err != nil {
		return 0, fmt.Errorf("failed to compute market variance: %w", err)
	}
	if variance == 0 {
		return 0, domain.InsufficientDataError{Symbol: ticker, Required: b.MinObservations, Got: len(assetReturns)}
	}

	return covariance / variance, nil
}

// alignedReturns joins the two series on trading date and converts to
// daily returns over the shared days.
func alignedReturns(asset, market []domain.AssetPrice) ([]float64, []float64) {
	marketByDate := make(map[string]float64, len(market))
	for _, p := range market {
		marketByDate[p.Date.Format("2006-01-02")] = p.Price
	}

	type pair struct{ asset, market float64 }
	pairs := []pair{}
	for _, p := range asset {
		if marketPrice, ok := marketByDate[p.Date.Format("2006-01-02")]; ok {
			pairs = append(pairs, pair{asset: p.Price, market: marketPrice})
		}
	}

	assetReturns := []float64{}
	marketReturns := []float64{}
	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].asset == 0 || pairs[i-1].market == 0 {
			continue
		}
		assetReturns = append(assetReturns, pairs[i].asset/pairs[i-1].asset-1)
		marketReturns = append(marketReturns, pairs[i].market/pairs[i-1].market-1)
	}

	return assetReturns, marketReturns
}
