package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a row of the exchange_rates table.
type ExchangeRate struct {
	Currency string          `json:"currency"` // CHAR(3)
	Rate     decimal.Decimal `json:"rate"`     // NUMERIC
	RateDate time.Time       `json:"rateDate"` // DATE
}
