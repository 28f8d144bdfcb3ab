package cmd

import (
	"github.com/mingdom/folio/api"
	"github.com/mingdom/folio/internal/app"
	"github.com/mingdom/folio/internal/config"
	"github.com/mingdom/folio/internal/loader"
	"github.com/mingdom/folio/internal/logger"
	"github.com/mingdom/folio/internal/marketdata"
	"github.com/mingdom/folio/internal/repository"
)

// InitializeDependencies builds the full handler graph from config.
func InitializeDependencies() (*api.ApiHandler, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log := logger.New()

	provider := marketdata.NewCachingProvider(
		marketdata.NewYahooProvider(cfg.MarketIndexTicker),
		cfg.MarketDataTTL,
	)

	window := marketdata.Period6Mo
	switch cfg.BetaWindowMonths {
	case 1:
		window = marketdata.Period1Mo
	case 3:
		window = marketdata.Period3Mo
	case 12:
		window = marketdata.Period1Yr
	}

	portfolioHandler := &app.PortfolioHandler{
		Loader:     loader.New(cfg.CashPatterns, log),
		MarketData: provider,
		Beta:       marketdata.NewBetaCalculator(provider, window, cfg.MinBetaObservations),
		Config:     cfg,
		Logger:     log,
	}

	var gptRepository repository.GptRepository
	if cfg.GptAPIKey != "" {
		gptRepository, err = repository.NewGptRepository(cfg.GptAPIKey)
		if err != nil {
			return nil, nil, err
		}
	}

	return &api.ApiHandler{
		PortfolioHandler: portfolioHandler,
		GptRepository:    gptRepository,
		Logger:           log,
	}, cfg, nil
}
