package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portsrepo "github.com/accrualfi/accrual_ledger_app/internal/core/ports/repositories"
)

// APITokenRepository is an in-memory API token store.
type APITokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]domain.APIToken
}

// NewAPITokenRepository creates an empty in-memory token store.
func NewAPITokenRepository() *APITokenRepository {
	return &APITokenRepository{tokens: make(map[string]domain.APIToken)}
}

var _ portsrepo.APITokenRepository = (*APITokenRepository)(nil)

// SaveToken persists a newly issued token.
func (r *APITokenRepository) SaveToken(ctx context.Context, token domain.APIToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[token.TokenID]; exists {
		return fmt.Errorf("%w: token with ID %s already exists", apperrors.ErrDuplicate, token.TokenID)
	}
	r.tokens[token.TokenID] = token
	return nil
}

// FindTokenByID retrieves a token by its ID.
func (r *APITokenRepository) FindTokenByID(ctx context.Context, tokenID string) (*domain.APIToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[tokenID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

// FindTokensByPrefix retrieves unrevoked tokens sharing a lookup prefix.
func (r *APITokenRepository) FindTokensByPrefix(ctx context.Context, prefix string) ([]domain.APIToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []domain.APIToken
	for _, t := range r.tokens {
		if t.Prefix == prefix && !t.IsRevoked() {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

// ListTokens retrieves all unrevoked tokens ordered by creation time.
func (r *APITokenRepository) ListTokens(ctx context.Context) ([]domain.APIToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tokens []domain.APIToken
	for _, t := range r.tokens {
		if !t.IsRevoked() {
			tokens = append(tokens, t)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
	})
	return tokens, nil
}

// UpdateLastUsed records when a token last authenticated a request.
func (r *APITokenRepository) UpdateLastUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenID]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.LastUsedAt = &usedAt
	r.tokens[tokenID] = t
	return nil
}

// RevokeToken marks a token revoked.
func (r *APITokenRepository) RevokeToken(ctx context.Context, tokenID string, revokedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenID]
	if !ok || t.IsRevoked() {
		return apperrors.ErrNotFound
	}
	t.RevokedAt = &revokedAt
	r.tokens[tokenID] = t
	return nil
}
