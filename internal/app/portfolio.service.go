// Package app wires the loader, market data, and portfolio math into
// the load/summarize/simulate operations the API exposes.
package app

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/mingdom/folio/internal/config"
	"github.com/mingdom/folio/internal/domain"
	"github.com/mingdom/folio/internal/loader"
	"github.com/mingdom/folio/internal/marketdata"
	"github.com/mingdom/folio/internal/portfolio"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PortfolioHandler struct {
	Loader     *loader.Loader
	MarketData marketdata.Provider
	Beta       *marketdata.BetaCalculator
	Config     *config.Config
	Logger     *zap.SugaredLogger
}

// PortfolioSnapshot is one fully priced portfolio. It is immutable
// once built; reloads and sweeps derive fresh snapshots instead of
// mutating it.
type PortfolioSnapshot struct {
	Groups          []*domain.PortfolioGroup
	CashLike        []domain.CashLikePosition
	PendingActivity decimal.Decimal
	Summary         domain.PortfolioSummary
	LoadedAt        time.Time
}

// LoadFromCSV parses the export, attaches spot prices and betas, and
// builds the grouped, summarized snapshot. Positions whose market data
// is unavailable are excluded and reported - they are never given a
// fabricated beta of zero.
func (h *PortfolioHandler) LoadFromCSV(ctx context.Context, r io.Reader) (*PortfolioSnapshot, error) {
	raw, err := h.Loader.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	specs := map[string]*portfolio.GroupSpec{}
	specFor := func(ticker string) *portfolio.GroupSpec {
		if _, ok := specs[ticker]; !ok {
			specs[ticker] = &portfolio.GroupSpec{Ticker: ticker}
		}
		return specs[ticker]
	}
	for i := range raw.Stocks {
		stock := raw.Stocks[i]
		specFor(stock.Ticker).Stock = &stock
	}
	for _, opt := range raw.Options {
		spec := specFor(opt.Underlying)
		spec.Options = append(spec.Options, opt)
	}

	tickers := make([]string, 0, len(specs))
	for ticker := range specs {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	cashLike := append([]domain.CashLikePosition{}, raw.CashCandidates...)
	excluded := []domain.ExcludedPosition{}
	groups := []*domain.PortfolioGroup{}

	for _, ticker := range tickers {
		spec := specs[ticker]

		beta, err := h.betaFor(ctx, ticker)
		if err != nil {
			h.Logger.Warnf("excluding %s: %v", ticker, err)
			excluded = append(excluded, domain.ExcludedPosition{
				Symbol: ticker,
				Reason: fmt.Sprintf("beta unavailable: %v", err),
			})
			continue
		}

		// The beta-threshold half of cash-like detection. Only plain
		// stock holdings qualify; anything with options on it is a
		// directional position no matter how low the beta.
		if math.Abs(beta) < h.Config.CashBetaThreshold && spec.Stock != nil && len(spec.Options) == 0 {
			cashLike = append(cashLike, domain.CashLikePosition{
				Ticker:      ticker,
				Description: spec.Stock.Description,
				Value:       spec.Stock.CurrentValue,
			})
			continue
		}

		spot, err := h.MarketData.Spot(ctx, ticker)
		if err != nil {
			if spec.Stock == nil {
				h.Logger.Warnf("excluding %s options: no spot price: %v", ticker, err)
				excluded = append(excluded, domain.ExcludedPosition{
					Symbol: ticker,
					Reason: fmt.Sprintf("spot price unavailable: %v", err),
				})
				continue
			}
			h.Logger.Warnf("using export price for %s, spot fetch failed: %v", ticker, err)
			spot = spec.Stock.Price
		}

		spec.Beta = beta
		groups = append(groups, portfolio.CreateGroup(*spec, spot, h.Config.RiskFreeRate, nil))
	}

	summary := portfolio.BuildSummary(groups, cashLike, raw.PendingActivity)
	summary.Excluded = append(summary.Excluded, excluded...)

	return &PortfolioSnapshot{
		Groups:          groups,
		CashLike:        cashLike,
		PendingActivity: raw.PendingActivity,
		Summary:         summary,
		LoadedAt:        time.Now().UTC(),
	}, nil
}

// betaFor returns 1 for the index itself - regressing an asset against
// itself is noise around a value that is 1 by definition.
func (h *PortfolioHandler) betaFor(ctx context.Context, ticker string) (float64, error) {
	if ticker == h.Config.MarketIndexTicker {
		return 1, nil
	}
	return h.Beta.Beta(ctx, ticker)
}

// Simulate sweeps the snapshot across the given index changes, or the
// default grid when none are supplied.
func (h *PortfolioHandler) Simulate(snapshot *PortfolioSnapshot, spyChanges []float64) []portfolio.SimulationPoint {
	if len(spyChanges) == 0 {
		spyChanges = portfolio.DefaultSPYChanges()
	}
	return portfolio.SimulateWithSPYChanges(
		snapshot.Groups,
		spyChanges,
		snapshot.CashLike,
		snapshot.PendingActivity,
		h.Config.MarketIndexTicker,
		h.Config.RiskFreeRate,
	)
}
