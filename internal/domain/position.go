package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// ContractSize is the number of shares one option contract controls.
const ContractSize = 100

// OptionPosition is a single option holding parsed from the brokerage
// export. Quantity is signed: negative means short. There is no
// separate long/short flag - the sign is the only source of truth.
type OptionPosition struct {
	ID         uuid.UUID
	Underlying string
	OptionType OptionType
	Strike     float64
	Expiry     time.Time
	Quantity   int

	// LastPrice is the option's last traded price from the export,
	// used to back out implied volatility.
	LastPrice float64

	// UnderlyingPrice is set from market data after parsing and
	// replaced on every refresh or simulation step.
	UnderlyingPrice float64

	Description  string
	CurrentValue decimal.Decimal
	CostBasis    decimal.Decimal
}

// TimeToExpiry returns the year fraction until expiry as of now.
// Expired contracts return a non-positive value; they still price at
// intrinsic value.
func (o OptionPosition) TimeToExpiry(now time.Time) float64 {
	return o.Expiry.Sub(now).Hours() / 24 / 365
}

// RecalculateWithPrice returns a copy of the position repriced at a new
// underlying. The receiver is never mutated, so simulation sweeps can
// derive as many snapshots as they want from one base position.
func (o OptionPosition) RecalculateWithPrice(underlyingPrice float64) OptionPosition {
	o.UnderlyingPrice = underlyingPrice
	return o
}

// StockPosition is a share holding. Quantity is signed: negative means
// short.
type StockPosition struct {
	ID       uuid.UUID
	Ticker   string
	Quantity float64
	Price    float64

	// Beta vs the market index over the trailing regression window.
	Beta float64

	Description  string
	CurrentValue decimal.Decimal
	CostBasis    decimal.Decimal
}

// MarketExposure is quantity * price with the quantity sign preserved.
// Short positions must come out negative, so no abs() anywhere on this
// path.
func (s StockPosition) MarketExposure() float64 {
	return s.Quantity * s.Price
}

func (s StockPosition) BetaAdjustedExposure() float64 {
	return s.MarketExposure() * s.Beta
}

func (s StockPosition) RecalculateWithPrice(price float64) StockPosition {
	s.Price = price
	return s
}

// CashLikePosition is a money-market or equivalent holding. It carries
// its face value into the summary's cash bucket and is excluded from
// directional exposure, with beta pinned to zero.
type CashLikePosition struct {
	Ticker      string
	Description string
	Value       decimal.Decimal
}
