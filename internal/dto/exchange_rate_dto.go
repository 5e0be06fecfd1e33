package dto

import (
	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListRatesQuery binds GET /rates query parameters.
type ListRatesQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Page string `form:"page"`
	Size string `form:"size"`
}

// GetRateQuery binds GET /rates/{currency} query parameters.
type GetRateQuery struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// ExchangeRateResponse is one stored observation: Rate units of Currency per 1 EUR on RateDate.
type ExchangeRateResponse struct {
	Currency string          `json:"currency" example:"USD"`
	Rate     decimal.Decimal `json:"rate" swaggertype:"string" example:"1.0956"`
	RateDate string          `json:"rateDate" example:"2024-01-02"`
}

// ResolvedRateResponse is the answer to a rate query for one currency and date.
type ResolvedRateResponse struct {
	ExchangeRateResponse
	RequestedDate string `json:"requestedDate" example:"2024-01-06"`
	FallbackUsed  bool   `json:"fallbackUsed"`
	Source        string `json:"source" example:"EXACT"`
}

// ListRatesResponse is one page of stored observations.
type ListRatesResponse struct {
	Rates      []ExchangeRateResponse `json:"rates"`
	Page       int                    `json:"page"`
	Size       int                    `json:"size"`
	Total      int                    `json:"total"`
	TotalPages int                    `json:"totalPages"`
}

// ToExchangeRateResponse converts a domain.RateObservation to ExchangeRateResponse DTO
func ToExchangeRateResponse(obs domain.RateObservation) ExchangeRateResponse {
	return ExchangeRateResponse{
		Currency: obs.Currency,
		Rate:     obs.Rate,
		RateDate: obs.RateDate.Format(domain.DateLayout),
	}
}

// ToExchangeRateResponses converts a slice of observations.
func ToExchangeRateResponses(observations []domain.RateObservation) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(observations))
	for i, obs := range observations {
		responses[i] = ToExchangeRateResponse(obs)
	}
	return responses
}

// ToResolvedRateResponse converts a domain.ResolvedRate.
func ToResolvedRateResponse(r *domain.ResolvedRate) ResolvedRateResponse {
	return ResolvedRateResponse{
		ExchangeRateResponse: ToExchangeRateResponse(r.Observation),
		RequestedDate:        r.RequestedDate.Format(domain.DateLayout),
		FallbackUsed:         r.FallbackUsed(),
		Source:               string(r.Tier),
	}
}

// ToListRatesResponse converts a domain.RatePage.
func ToListRatesResponse(page *domain.RatePage) ListRatesResponse {
	return ListRatesResponse{
		Rates:      ToExchangeRateResponses(page.Items),
		Page:       page.Page,
		Size:       page.Size,
		Total:      page.Total,
		TotalPages: page.TotalPages(),
	}
}
