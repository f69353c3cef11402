package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portsrepo "github.com/accrualfi/accrual_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// API keys look like "alk_<prefix>_<secret>". The prefix is stored in clear
// for lookup; only a bcrypt hash of the full key is persisted.
const (
	apiKeyScheme      = "alk"
	apiKeyPrefixBytes = 4
	apiKeySecretBytes = 32
	apiKeyPartCount   = 3
	apiKeyPartDelim   = "_"
)

// apiTokenService implements the APITokenSvc interface.
type apiTokenService struct {
	tokenRepo portsrepo.APITokenRepository
	now       func() time.Time
}

// NewAPITokenService creates a new instance of apiTokenService.
func NewAPITokenService(tokenRepo portsrepo.APITokenRepository) portssvc.APITokenSvc {
	return &apiTokenService{tokenRepo: tokenRepo, now: time.Now}
}

var _ portssvc.APITokenSvc = (*apiTokenService)(nil)

// CreateToken issues a new API key with the given role.
func (s *apiTokenService) CreateToken(ctx context.Context, name string, role domain.TokenRole, expiresIn *time.Duration, callerID string) (string, *domain.APIToken, error) {
	if name == "" {
		return "", nil, fmt.Errorf("%w: token name is required", apperrors.ErrValidation)
	}
	if role != domain.RoleOperator && role != domain.RoleViewer {
		return "", nil, fmt.Errorf("%w: unknown token role %q", apperrors.ErrValidation, role)
	}

	prefix, err := utils.GenerateSecureRandomString(apiKeyPrefixBytes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate key prefix: %w", err)
	}
	secret, err := utils.GenerateSecureRandomString(apiKeySecretBytes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate key secret: %w", err)
	}
	plaintext := strings.Join([]string{apiKeyScheme, prefix, secret}, apiKeyPartDelim)

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash key: %w", err)
	}

	now := s.now().UTC()
	var expiresAt *time.Time
	if expiresIn != nil {
		expiry := now.Add(*expiresIn)
		expiresAt = &expiry
	}

	token := domain.APIToken{
		TokenID:   uuid.NewString(),
		Name:      name,
		Prefix:    prefix,
		TokenHash: string(hash),
		Role:      role,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		CreatedBy: callerID,
	}

	if err := s.tokenRepo.SaveToken(ctx, token); err != nil {
		return "", nil, fmt.Errorf("failed to save token: %w", err)
	}

	// The plaintext key is returned exactly once.
	return plaintext, &token, nil
}

// ListTokens returns all unrevoked tokens.
func (s *apiTokenService) ListTokens(ctx context.Context) ([]domain.APIToken, error) {
	tokens, err := s.tokenRepo.ListTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	if tokens == nil {
		tokens = []domain.APIToken{}
	}
	return tokens, nil
}

// RevokeToken revokes a token by ID.
func (s *apiTokenService) RevokeToken(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return fmt.Errorf("%w: token ID is required", apperrors.ErrValidation)
	}
	if err := s.tokenRepo.RevokeToken(ctx, tokenID, s.now().UTC()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to revoke token %s: %w", tokenID, err)
	}
	return nil
}

// ValidateToken checks a plaintext key against the stored hashes sharing its
// prefix and returns the matching record.
func (s *apiTokenService) ValidateToken(ctx context.Context, plaintext string) (*domain.APIToken, error) {
	parts := strings.Split(plaintext, apiKeyPartDelim)
	if len(parts) != apiKeyPartCount || parts[0] != apiKeyScheme {
		return nil, fmt.Errorf("%w: malformed API key", apperrors.ErrForbidden)
	}

	candidates, err := s.tokenRepo.FindTokensByPrefix(ctx, parts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}

	now := s.now().UTC()
	for i := range candidates {
		token := candidates[i]
		if bcrypt.CompareHashAndPassword([]byte(token.TokenHash), []byte(plaintext)) != nil {
			continue
		}
		if token.IsRevoked() || token.IsExpired(now) {
			return nil, fmt.Errorf("%w: API key expired or revoked", apperrors.ErrForbidden)
		}
		// Best effort; a failed timestamp update must not reject the caller.
		_ = s.tokenRepo.UpdateLastUsed(ctx, token.TokenID, now)
		return &token, nil
	}
	return nil, fmt.Errorf("%w: unknown API key", apperrors.ErrForbidden)
}
