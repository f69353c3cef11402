package mapping

import (
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	"github.com/accrualfi/accrual_ledger_app/internal/models"
)

// ToModelAPIToken converts a domain.APIToken to its DB row representation.
func ToModelAPIToken(d domain.APIToken) models.APIToken {
	return models.APIToken{
		TokenID:    d.TokenID,
		Name:       d.Name,
		Prefix:     d.Prefix,
		TokenHash:  d.TokenHash,
		Role:       string(d.Role),
		LastUsedAt: d.LastUsedAt,
		ExpiresAt:  d.ExpiresAt,
		RevokedAt:  d.RevokedAt,
		CreatedAt:  d.CreatedAt,
		CreatedBy:  d.CreatedBy,
	}
}

// ToDomainAPIToken converts a DB row to a domain.APIToken.
func ToDomainAPIToken(m models.APIToken) domain.APIToken {
	return domain.APIToken{
		TokenID:    m.TokenID,
		Name:       m.Name,
		Prefix:     m.Prefix,
		TokenHash:  m.TokenHash,
		Role:       domain.TokenRole(m.Role),
		LastUsedAt: m.LastUsedAt,
		ExpiresAt:  m.ExpiresAt,
		RevokedAt:  m.RevokedAt,
		CreatedAt:  m.CreatedAt,
		CreatedBy:  m.CreatedBy,
	}
}
