package dto

import "github.com/SscSPs/fx_reference_rates/internal/core/domain"

// IngestionResponse reports the outcome of refreshing one currency.
type IngestionResponse struct {
	Currency string                 `json:"currency" example:"USD"`
	Status   string                 `json:"status" example:"STORED"`
	Inserted int                    `json:"inserted"`
	Skipped  int                    `json:"skipped"`
	Rates    []ExchangeRateResponse `json:"rates"`
}

// ToIngestionResponse converts a domain.IngestResult.
func ToIngestionResponse(r domain.IngestResult) IngestionResponse {
	return IngestionResponse{
		Currency: r.Currency,
		Status:   string(r.Status),
		Inserted: r.Inserted,
		Skipped:  r.Skipped,
		Rates:    ToExchangeRateResponses(r.Observations),
	}
}

// ToIngestionResponses converts the results of a bulk refresh.
func ToIngestionResponses(results []domain.IngestResult) []IngestionResponse {
	responses := make([]IngestionResponse, len(results))
	for i, r := range results {
		responses[i] = ToIngestionResponse(r)
	}
	return responses
}
