package domain

import (
	"fmt"
	"time"
)

// InvalidInputError indicates a numeric input outside the range the
// pricing math is defined over (non-positive volatility, price, etc).
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s=%v: %s", e.Field, e.Value, e.Reason)
}

// InsufficientDataError indicates there was not enough historical data
// to compute a statistic reliably. Callers must treat this as "value
// unavailable", never substitute a default.
type InsufficientDataError struct {
	Symbol   string
	Required int
	Got      int
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d observations, got %d", e.Symbol, e.Required, e.Got)
}

// NoTimeValueError indicates an attempt to back out implied volatility
// from a contract that has already expired. Symbol and Expiry are set
// when the caller knows the contract; callers working from a bare year
// fraction leave them zero.
type NoTimeValueError struct {
	Symbol string
	Expiry time.Time
}

func (e NoTimeValueError) Error() string {
	if e.Expiry.IsZero() {
		return "contract is expired: no time value to solve against"
	}
	return fmt.Sprintf("%s expired %s: no time value to solve against", e.Symbol, e.Expiry.Format(time.DateOnly))
}
