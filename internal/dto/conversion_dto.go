package dto

import (
	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	"github.com/SscSPs/fx_reference_rates/internal/utils"
	"github.com/SscSPs/fx_reference_rates/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ConversionQuery binds GET /conversions query parameters.
type ConversionQuery struct {
	Currency string `form:"currency" binding:"required,currency"`
	Amount   string `form:"amount" binding:"required"`
	Date     string `form:"date" binding:"required,datetime=2006-01-02"`
}

// ConversionResponse is the result of converting an amount of Currency into EUR.
type ConversionResponse struct {
	Currency        string          `json:"currency" example:"USD"`
	OriginalAmount  decimal.Decimal `json:"originalAmount" swaggertype:"string" example:"10"`
	RateUsed        decimal.Decimal `json:"rateUsed" swaggertype:"string" example:"2"`
	ConvertedAmount string          `json:"convertedAmount" example:"5.000000"`
	TargetCurrency  string          `json:"targetCurrency" example:"EUR"`
	RequestedDate   string          `json:"requestedDate" example:"2024-01-02"`
	RateDateUsed    string          `json:"rateDateUsed" example:"2024-01-02"`
	FallbackUsed    bool            `json:"fallbackUsed"`
}

// ToConversionResponse converts a domain.ConversionResult.
func ToConversionResponse(r *domain.ConversionResult) ConversionResponse {
	return ConversionResponse{
		Currency:        r.Currency,
		OriginalAmount:  r.OriginalAmount,
		RateUsed:        r.RateUsed,
		ConvertedAmount: utils.FormatWithPrecision(r.ConvertedAmount, accounting.ConversionScale),
		TargetCurrency:  "EUR",
		RequestedDate:   r.RequestedDate.Format(domain.DateLayout),
		RateDateUsed:    r.RateDateUsed.Format(domain.DateLayout),
		FallbackUsed:    r.FallbackUsed,
	}
}
