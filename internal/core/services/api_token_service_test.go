package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/core/services"
	"github.com/accrualfi/accrual_ledger_app/internal/repositories/database/memory"
	"github.com/stretchr/testify/suite"
)

type APITokenServiceTestSuite struct {
	suite.Suite
	service portssvc.APITokenSvc
	ctx     context.Context
}

func (suite *APITokenServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.service = services.NewAPITokenService(memory.NewAPITokenRepository())
}

func (suite *APITokenServiceTestSuite) TestCreateAndValidate() {
	plaintext, token, err := suite.service.CreateToken(suite.ctx, "ci-operator", domain.RoleOperator, nil, "admin")
	suite.Require().NoError(err)

	suite.True(strings.HasPrefix(plaintext, "alk_"))
	suite.NotContains(token.TokenHash, plaintext, "plaintext must not be stored")
	suite.Equal(domain.RoleOperator, token.Role)

	validated, err := suite.service.ValidateToken(suite.ctx, plaintext)
	suite.NoError(err)
	suite.Equal(token.TokenID, validated.TokenID)
	suite.NotNil(validated.LastUsedAt)
}

func (suite *APITokenServiceTestSuite) TestValidate_RejectsUnknownKey() {
	_, _, err := suite.service.CreateToken(suite.ctx, "a", domain.RoleViewer, nil, "admin")
	suite.Require().NoError(err)

	_, err = suite.service.ValidateToken(suite.ctx, "alk_deadbeef_0000000000000000000000000000000000000000000000000000000000000000")
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *APITokenServiceTestSuite) TestValidate_RejectsMalformedKey() {
	_, err := suite.service.ValidateToken(suite.ctx, "not-an-api-key")
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.service.ValidateToken(suite.ctx, "xxx_aaaa_bbbb")
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *APITokenServiceTestSuite) TestValidate_RejectsRevokedKey() {
	plaintext, token, err := suite.service.CreateToken(suite.ctx, "short-lived", domain.RoleViewer, nil, "admin")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.RevokeToken(suite.ctx, token.TokenID))

	_, err = suite.service.ValidateToken(suite.ctx, plaintext)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *APITokenServiceTestSuite) TestValidate_RejectsExpiredKey() {
	expiresIn := -time.Minute // already expired at issue time
	plaintext, _, err := suite.service.CreateToken(suite.ctx, "expired", domain.RoleViewer, &expiresIn, "admin")
	suite.Require().NoError(err)

	_, err = suite.service.ValidateToken(suite.ctx, plaintext)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *APITokenServiceTestSuite) TestCreate_RejectsInvalidInput() {
	_, _, err := suite.service.CreateToken(suite.ctx, "", domain.RoleViewer, nil, "admin")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, _, err = suite.service.CreateToken(suite.ctx, "x", domain.TokenRole("ROOT"), nil, "admin")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *APITokenServiceTestSuite) TestListExcludesRevoked() {
	_, keep, err := suite.service.CreateToken(suite.ctx, "keep", domain.RoleViewer, nil, "admin")
	suite.Require().NoError(err)
	_, drop, err := suite.service.CreateToken(suite.ctx, "drop", domain.RoleViewer, nil, "admin")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.RevokeToken(suite.ctx, drop.TokenID))

	tokens, err := suite.service.ListTokens(suite.ctx)
	suite.NoError(err)
	suite.Len(tokens, 1)
	suite.Equal(keep.TokenID, tokens[0].TokenID)
}

func (suite *APITokenServiceTestSuite) TestRevoke_NotFound() {
	err := suite.service.RevokeToken(suite.ctx, "00000000-0000-0000-0000-000000000000")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestAPITokenService(t *testing.T) {
	suite.Run(t, new(APITokenServiceTestSuite))
}
