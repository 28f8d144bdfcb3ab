// Package config loads the process-wide configuration once at startup.
// Everything downstream receives it explicitly; no package reads env
// vars or module-level knob constants on its own.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// RiskFreeRate feeds the Black-Scholes terms.
	RiskFreeRate float64

	// MarketIndexTicker is the index betas are regressed against and
	// the ticker the simulator treats as moving 1:1.
	MarketIndexTicker string

	// BetaWindowMonths is the trailing regression window.
	BetaWindowMonths int

	// MinBetaObservations is the minimum overlapping trading days
	// before a beta is trusted.
	MinBetaObservations int

	// CashBetaThreshold: |beta| below this marks a holding cash-like.
	CashBetaThreshold float64

	// CashPatterns are symbol/description heuristics for money-market
	// holdings, checked before any beta is computed.
	CashPatterns []string

	MarketDataTTL time.Duration

	GptAPIKey string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return f, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return i, nil
}

// Load reads .env if present, then the environment. Defaults make a
// bare `folio serve` work against live Yahoo data with no setup.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port, err := envInt("FOLIO_PORT", 8080)
	if err != nil {
		return nil, err
	}
	riskFree, err := envFloat("FOLIO_RISK_FREE_RATE", 0.05)
	if err != nil {
		return nil, err
	}
	windowMonths, err := envInt("FOLIO_BETA_WINDOW_MONTHS", 6)
	if err != nil {
		return nil, err
	}
	minObs, err := envInt("FOLIO_MIN_BETA_OBSERVATIONS", 20)
	if err != nil {
		return nil, err
	}
	cashThreshold, err := envFloat("FOLIO_CASH_BETA_THRESHOLD", 0.1)
	if err != nil {
		return nil, err
	}
	ttlMinutes, err := envInt("FOLIO_MARKET_DATA_TTL_MINUTES", 15)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:                 envOr("FOLIO_ENV", "dev"),
		Port:                port,
		RiskFreeRate:        riskFree,
		MarketIndexTicker:   envOr("FOLIO_MARKET_INDEX", "SPY"),
		BetaWindowMonths:    windowMonths,
		MinBetaObservations: minObs,
		CashBetaThreshold:   cashThreshold,
		CashPatterns: []string{
			"SPAXX", "FMPXX", "FDRXX", "FZFXX", "CORE",
			"MONEY MARKET", "CASH RESERVES", "TREASURY ONLY",
		},
		MarketDataTTL: time.Duration(ttlMinutes) * time.Minute,
		GptAPIKey:     os.Getenv("FOLIO_GPT_API_KEY"),
	}, nil
}
