package sources

import "context"

// RateSource returns the raw CSV series published for one currency.
// Implementations report an unreachable provider as apperrors.ErrDownstreamUnavailable
// (or ErrCircuitOpen), and a saturated client as apperrors.ErrTooBusy.
type RateSource interface {
	FetchCSV(ctx context.Context, currency string) (string, error)
}
