package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionResult is the answer to "convert Amount of Currency on a date into EUR".
// It is computed per query and never persisted.
type ConversionResult struct {
	Currency        string
	OriginalAmount  decimal.Decimal
	RateUsed        decimal.Decimal
	ConvertedAmount decimal.Decimal // always 6 fractional digits
	RequestedDate   time.Time
	RateDateUsed    time.Time
	FallbackUsed    bool
}
