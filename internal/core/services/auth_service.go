package services

import (
	"context"
	"fmt"
	"time"

	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// authService exchanges API keys for signed JWTs.
type authService struct {
	tokenSvc  portssvc.APITokenSvc
	jwtSecret string
	jwtExpiry time.Duration
	jwtIssuer string
	now       func() time.Time
}

// NewAuthService creates a new authService.
func NewAuthService(tokenSvc portssvc.APITokenSvc, jwtSecret, jwtIssuer string, jwtExpiry time.Duration) portssvc.AuthSvc {
	return &authService{
		tokenSvc:  tokenSvc,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		jwtIssuer: jwtIssuer,
		now:       time.Now,
	}
}

var _ portssvc.AuthSvc = (*authService)(nil)

// IssueToken validates an API key and returns a signed JWT carrying its role.
func (s *authService) IssueToken(ctx context.Context, apiKey string) (string, time.Time, string, error) {
	token, err := s.tokenSvc.ValidateToken(ctx, apiKey)
	if err != nil {
		return "", time.Time{}, "", err
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.jwtExpiry)

	claims := middleware.LedgerClaims{
		Role: string(token.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   token.TokenID,
			Issuer:    s.jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, expiresAt, string(token.Role), nil
}
