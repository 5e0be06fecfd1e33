package mapping

import (
	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
	"github.com/SscSPs/fx_reference_rates/internal/models"
)

// ToModelExchangeRate converts a domain RateObservation to a model ExchangeRate
func ToModelExchangeRate(d domain.RateObservation) models.ExchangeRate {
	return models.ExchangeRate{
		Currency: d.Currency,
		Rate:     d.Rate,
		RateDate: domain.DateOf(d.RateDate),
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain RateObservation
func ToDomainExchangeRate(m models.ExchangeRate) domain.RateObservation {
	return domain.RateObservation{
		Currency: m.Currency,
		Rate:     m.Rate,
		RateDate: domain.DateOf(m.RateDate),
	}
}

// ToDomainExchangeRates converts a slice of model rows.
func ToDomainExchangeRates(ms []models.ExchangeRate) []domain.RateObservation {
	out := make([]domain.RateObservation, len(ms))
	for i, m := range ms {
		out[i] = ToDomainExchangeRate(m)
	}
	return out
}
