// Package marketdata pulls daily closes from Yahoo Finance and derives
// spot prices and betas from them. Fetches go through a process-wide
// TTL cache keyed by symbol+period, which is the only shared state in
// the system.
package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mingdom/folio/internal/domain"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// Period selects how far back a history fetch reaches.
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Yr Period = "1y"
)

func (p Period) start(now time.Time) time.Time {
	switch p {
	case Period1Mo:
		return now.AddDate(0, -1, 0)
	case Period3Mo:
		return now.AddDate(0, -3, 0)
	case Period1Yr:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -6, 0)
	}
}

// Provider is the pull interface to the market data source. Unknown
// tickers come back as errors or empty histories - callers must treat
// either as "data unavailable", never as zero.
type Provider interface {
	FetchData(ctx context.Context, ticker string, period Period) ([]domain.AssetPrice, error)
	FetchMarketData(ctx context.Context, period Period) ([]domain.AssetPrice, error)
	Spot(ctx context.Context, ticker string) (float64, error)
}

type yahooProvider struct {
	indexTicker string
}

func NewYahooProvider(indexTicker string) Provider {
	return &yahooProvider{indexTicker: indexTicker}
}

func (p *yahooProvider) FetchData(ctx context.Context, ticker string, period Period) ([]domain.AssetPrice, error) {
	now := time.Now().UTC()
	start := period.start(now)
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&now),
		Symbol:   ticker,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	prices := []domain.AssetPrice{}
	for iter.Next() {
		prices = append(prices, domain.AssetPrice{
			Symbol: ticker,
			Price:  iter.Bar().AdjClose.InexactFloat64(),
			Date:   time.Unix(int64(iter.Bar().Timestamp), 0).UTC().Truncate(24 * time.Hour),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", ticker, err)
	}

	return prices, nil
}

func (p *yahooProvider) FetchMarketData(ctx context.Context, period Period) ([]domain.AssetPrice, error) {
	return p.FetchData(ctx, p.indexTicker, period)
}

func (p *yahooProvider) Spot(ctx context.Context, ticker string) (float64, error) {
	prices, err := p.FetchData(ctx, ticker, Period1Mo)
	if err != nil {
		return 0, err
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("no price data for %s", ticker)
	}
	return prices[len(prices)-1].Price, nil
}

type cacheEntry struct {
	prices    []domain.AssetPrice
	fetchedAt time.Time
}

type cachingProvider struct {
	inner Provider
	ttl   time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewCachingProvider wraps a provider with a symbol+period keyed TTL
// cache so repeated dashboard refreshes don't hammer the upstream.
func NewCachingProvider(inner Provider, ttl time.Duration) Provider {
	return &cachingProvider{
		inner: inner,
		ttl:   ttl,
		cache: map[string]cacheEntry{},
	}
}

func (c *cachingProvider) get(key string) ([]domain.AssetPrice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.prices, true
}

func (c *cachingProvider) set(key string, prices []domain.AssetPrice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{prices: prices, fetchedAt: time.Now()}
}

func (c *cachingProvider) FetchData(ctx context.Context, ticker string, period Period) ([]domain.AssetPrice, error) {
	key := ticker + ":" + string(period)
	if prices, ok := c.get(key); ok {
		return prices, nil
	}

	prices, err := c.inner.FetchData(ctx, ticker, period)
	if err != nil {
		return nil, err
	}
	c.set(key, prices)
	return prices, nil
}

func (c *cachingProvider) FetchMarketData(ctx context.Context, period Period) ([]domain.AssetPrice, error) {
	key := "__market:" + string(period)
	if prices, ok := c.get(key); ok {
		return prices, nil
	}

	prices, err := c.inner.FetchMarketData(ctx, period)
	if err != nil {
		return nil, err
	}
	c.set(key, prices)
	return prices, nil
}

func (c *cachingProvider) Spot(ctx context.Context, ticker string) (float64, error) {
	prices, err := c.FetchData(ctx, ticker, Period1Mo)
	if err != nil {
		return 0, err
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("no price data for %s", ticker)
	}
	return prices[len(prices)-1].Price, nil
}
