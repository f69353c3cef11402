package services

import (
	"context"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
)

// APITokenSvc defines operations for API token management.
type APITokenSvc interface {
	// CreateToken issues a new API key with the given role.
	// Returns the plaintext key (shown exactly once) and the stored record.
	CreateToken(ctx context.Context, name string, role domain.TokenRole, expiresIn *time.Duration, callerID string) (string, *domain.APIToken, error)

	// ListTokens returns all unrevoked tokens.
	ListTokens(ctx context.Context) ([]domain.APIToken, error)

	// RevokeToken revokes a token by ID.
	RevokeToken(ctx context.Context, tokenID string) error

	// ValidateToken checks a plaintext key and returns the matching token
	// record. Updates the token's last-used timestamp on success.
	ValidateToken(ctx context.Context, plaintext string) (*domain.APIToken, error)
}
