package repositories

import (
	"context"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
)

// APITokenRepository defines persistence operations for API tokens.
type APITokenRepository interface {
	// SaveToken persists a newly issued token.
	SaveToken(ctx context.Context, token domain.APIToken) error

	// FindTokenByID retrieves a token by its ID.
	FindTokenByID(ctx context.Context, tokenID string) (*domain.APIToken, error)

	// FindTokensByPrefix retrieves unrevoked tokens sharing a lookup prefix.
	FindTokensByPrefix(ctx context.Context, prefix string) ([]domain.APIToken, error)

	// ListTokens retrieves all unrevoked tokens.
	ListTokens(ctx context.Context) ([]domain.APIToken, error)

	// UpdateLastUsed records when a token last authenticated a request.
	UpdateLastUsed(ctx context.Context, tokenID string, usedAt time.Time) error

	// RevokeToken marks a token revoked. Returns apperrors.ErrNotFound if the
	// token does not exist or is already revoked.
	RevokeToken(ctx context.Context, tokenID string, revokedAt time.Time) error
}
