package services

import (
	"time"

	portsrepo "github.com/accrualfi/accrual_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
)

// ContainerConfig carries the settings services need at construction time.
type ContainerConfig struct {
	StrictRateDecrease bool
	JWTSecret          string
	JWTIssuer          string
	JWTExpiry          time.Duration
}

// NewServiceContainer wires all application services together.
func NewServiceContainer(ledgerRepo portsrepo.LedgerRepositoryWithTx, tokenRepo portsrepo.APITokenRepository, cfg ContainerConfig) *portssvc.ServiceContainer {
	tokenSvc := NewAPITokenService(tokenRepo)
	return &portssvc.ServiceContainer{
		Ledger:   NewLedgerService(ledgerRepo, LedgerServiceConfig{StrictRateDecrease: cfg.StrictRateDecrease}),
		APIToken: tokenSvc,
		Auth:     NewAuthService(tokenSvc, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry),
	}
}
