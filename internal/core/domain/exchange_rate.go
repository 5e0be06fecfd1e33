package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date format used for rate dates everywhere.
const DateLayout = "2006-01-02"

// RateObservation is a single daily reference rate: how many units of Currency one EUR buys on RateDate.
type RateObservation struct {
	Currency string          `json:"currency"` // ISO 4217 code, upper case
	Rate     decimal.Decimal `json:"rate"`
	RateDate time.Time       `json:"rateDate"` // UTC midnight
}

// ResolutionTier records which step of the resolver produced a rate.
type ResolutionTier string

const (
	TierExact     ResolutionTier = "EXACT"
	TierRefreshed ResolutionTier = "REFRESHED"
	TierFallback  ResolutionTier = "FALLBACK"
)

// ResolvedRate is the outcome of resolving a (currency, date) query.
type ResolvedRate struct {
	Observation   RateObservation
	RequestedDate time.Time
	Tier          ResolutionTier
}

// FallbackUsed reports whether the observation is from a date other than the requested one.
func (r ResolvedRate) FallbackUsed() bool {
	return !r.Observation.RateDate.Equal(r.RequestedDate)
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
