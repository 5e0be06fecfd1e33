package pgsql

import (
	portsrepo "github.com/SscSPs/fx_reference_rates/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the PostgreSQL repositories onto db (normally a *pgxpool.Pool).
func NewRepositoryProvider(db DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExchangeRateRepo: NewPgxExchangeRateRepository(db),
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)
