package dto

import (
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
)

// CreateAPITokenRequest defines the data needed to issue an API key.
type CreateAPITokenRequest struct {
	Name string           `json:"name" binding:"required"`
	Role domain.TokenRole `json:"role" binding:"required,oneof=OPERATOR VIEWER"`
	// ExpiresInDays of zero issues a non-expiring key.
	ExpiresInDays int `json:"expiresInDays" binding:"gte=0"`
}

// CreateAPITokenResponse carries the plaintext key. It is shown exactly once;
// only the bcrypt hash is stored.
type CreateAPITokenResponse struct {
	TokenID   string           `json:"tokenID"`
	Name      string           `json:"name"`
	Role      domain.TokenRole `json:"role"`
	APIKey    string           `json:"apiKey"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// APITokenResponse defines the data returned for an issued token. The secret
// is never included.
type APITokenResponse struct {
	TokenID    string           `json:"tokenID"`
	Name       string           `json:"name"`
	Prefix     string           `json:"prefix"`
	Role       domain.TokenRole `json:"role"`
	LastUsedAt *time.Time       `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time       `json:"expiresAt,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// ToAPITokenResponse converts a domain.APIToken to APITokenResponse DTO
func ToAPITokenResponse(t *domain.APIToken) APITokenResponse {
	return APITokenResponse{
		TokenID:    t.TokenID,
		Name:       t.Name,
		Prefix:     t.Prefix,
		Role:       t.Role,
		LastUsedAt: t.LastUsedAt,
		ExpiresAt:  t.ExpiresAt,
		CreatedAt:  t.CreatedAt,
	}
}

// ToListAPITokenResponse converts a slice of domain.APIToken to DTOs
func ToListAPITokenResponse(tokens []domain.APIToken) []APITokenResponse {
	res := make([]APITokenResponse, len(tokens))
	for i, t := range tokens {
		res[i] = ToAPITokenResponse(&t)
	}
	return res
}
