package memory

import (
	portsrepo "github.com/accrualfi/accrual_ledger_app/internal/core/ports/repositories"
)

// NewRepositoryProvider builds all in-memory repositories.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:   NewLedgerRepository(),
		APITokenRepo: NewAPITokenRepository(),
	}
}
