package accounting

import (
	"fmt"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ConversionScale is the number of decimal places kept in converted amounts.
const ConversionScale int32 = 6

// ConvertAmount converts an amount quoted in a foreign currency into EUR.
// Rates are quoted as units of currency per 1 EUR, so the result is amount / rate,
// rounded half away from zero to ConversionScale places.
func ConvertAmount(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than zero, got %s", apperrors.ErrValidation, amount.String())
	}
	if rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: rate is zero", apperrors.ErrInvalidRate)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: rate is negative (%s)", apperrors.ErrInvalidRate, rate.String())
	}

	return amount.DivRound(rate, ConversionScale), nil
}
