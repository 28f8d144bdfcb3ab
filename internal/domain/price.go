package domain

import "time"

// AssetPrice is one daily close pulled from the market data provider.
type AssetPrice struct {
	Symbol string
	Price  float64
	Date   time.Time
}
