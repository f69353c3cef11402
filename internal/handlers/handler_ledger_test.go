package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/dto"
	"github.com/accrualfi/accrual_ledger_app/internal/handlers"
	"github.com/accrualfi/accrual_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetHolder(ctx context.Context, holderID string) (*domain.Holder, error) {
	args := m.Called(ctx, holderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holder), args.Error(1)
}

func (m *MockLedgerService) EntitlementOf(ctx context.Context, holderID string) (decimal.Decimal, error) {
	args := m.Called(ctx, holderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) PrincipalOf(ctx context.Context, holderID string) (decimal.Decimal, error) {
	args := m.Called(ctx, holderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) RateOf(ctx context.Context, holderID string) (decimal.Decimal, error) {
	args := m.Called(ctx, holderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) GlobalRate(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) TotalSupply(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) ListHolders(ctx context.Context, limit int, nextToken string) ([]domain.Holder, string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.Holder), args.String(1), args.Error(2)
}

func (m *MockLedgerService) SetGlobalRate(ctx context.Context, newRate decimal.Decimal, callerID string) (*domain.LedgerState, error) {
	args := m.Called(ctx, newRate, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerState), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, holderID string, amount decimal.Decimal, rateOverride *decimal.Decimal, callerID string) (*domain.Holder, error) {
	args := m.Called(ctx, holderID, amount, rateOverride, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holder), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, holderID string, amount decimal.Decimal, callerID string) (*domain.Holder, error) {
	args := m.Called(ctx, holderID, amount, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holder), args.Error(1)
}

func (m *MockLedgerService) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, callerID string) (*domain.TransferResult, error) {
	args := m.Called(ctx, fromID, toID, amount, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferResult), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Test Suite ---
type LedgerHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *MockLedgerService
	jwtSecret         string
}

// generateTestToken creates a signed JWT for testing with the given role.
func (suite *LedgerHandlerTestSuite) generateTestToken(callerID string, role domain.TokenRole) string {
	claims := middleware.LedgerClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ala-test",
			Subject:   callerID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockLedgerService = new(MockLedgerService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret))
	operatorOnly := middleware.RequireRole(domain.RoleOperator)
	handlers.RegisterLedgerRoutes(v1, suite.mockLedgerService, operatorOnly)
	handlers.RegisterHolderRoutes(v1, suite.mockLedgerService)
}

func (suite *LedgerHandlerTestSuite) doJSON(method, url string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *LedgerHandlerTestSuite) TestCredit_Success() {
	holderID := uuid.NewString()
	callerID := uuid.NewString()
	amount := decimal.NewFromInt(1000)

	expected := &domain.Holder{
		HolderID:  holderID,
		Principal: amount,
		Rate:      decimal.NewFromInt(50_000_000_000),
	}

	suite.mockLedgerService.On("Credit",
		mock.Anything,
		holderID,
		mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(amount) }),
		(*decimal.Decimal)(nil),
		callerID,
	).Return(expected, nil).Once()

	token := suite.generateTestToken(callerID, domain.RoleOperator)
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/holders/%s/credit", holderID), dto.CreditRequest{Amount: amount}, token)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.HolderResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(holderID, resp.HolderID)
	suite.True(resp.Principal.Equal(amount))

	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestCredit_ViewerForbidden() {
	holderID := uuid.NewString()
	token := suite.generateTestToken(uuid.NewString(), domain.RoleViewer)

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/holders/%s/credit", holderID), dto.CreditRequest{Amount: decimal.NewFromInt(10)}, token)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "Credit")
}

func (suite *LedgerHandlerTestSuite) TestCredit_Unauthenticated() {
	holderID := uuid.NewString()

	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/holders/%s/credit", holderID), dto.CreditRequest{Amount: decimal.NewFromInt(10)}, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "Credit")
}

func (suite *LedgerHandlerTestSuite) TestDebit_WithdrawAllUsesSentinel() {
	holderID := uuid.NewString()
	callerID := uuid.NewString()

	expected := &domain.Holder{HolderID: holderID, Principal: decimal.Zero}

	suite.mockLedgerService.On("Debit",
		mock.Anything,
		holderID,
		mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(domain.AmountMax) }),
		callerID,
	).Return(expected, nil).Once()

	token := suite.generateTestToken(callerID, domain.RoleOperator)
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/holders/%s/debit", holderID), dto.DebitRequest{WithdrawAll: true}, token)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestDebit_InsufficientBalance() {
	holderID := uuid.NewString()
	callerID := uuid.NewString()
	amount := decimal.NewFromInt(500)

	suite.mockLedgerService.On("Debit",
		mock.Anything,
		holderID,
		mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(amount) }),
		callerID,
	).Return(nil, &apperrors.InsufficientBalanceError{
		Available: decimal.NewFromInt(100),
		Requested: amount,
	}).Once()

	token := suite.generateTestToken(callerID, domain.RoleOperator)
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/holders/%s/debit", holderID), dto.DebitRequest{Amount: amount}, token)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestTransfer_Success() {
	fromID := uuid.NewString()
	toID := uuid.NewString()
	callerID := uuid.NewString()
	amount := decimal.NewFromInt(250)

	expected := &domain.TransferResult{
		From:   domain.Holder{HolderID: fromID, Principal: decimal.NewFromInt(750)},
		To:     domain.Holder{HolderID: toID, Principal: amount},
		Amount: amount,
	}

	suite.mockLedgerService.On("Transfer",
		mock.Anything,
		fromID,
		toID,
		mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(amount) }),
		callerID,
	).Return(expected, nil).Once()

	token := suite.generateTestToken(callerID, domain.RoleOperator)
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/holders/%s/transfer", fromID), dto.TransferRequest{
		ToHolderID: toID,
		Amount:     amount,
	}, token)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.TransferResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(fromID, resp.From.HolderID)
	suite.Equal(toID, resp.To.HolderID)
	suite.True(resp.Amount.Equal(amount))

	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestSetGlobalRate_RejectedIncrease() {
	callerID := uuid.NewString()
	newRate := decimal.NewFromInt(90_000_000_000)

	suite.mockLedgerService.On("SetGlobalRate",
		mock.Anything,
		mock.MatchedBy(func(r decimal.Decimal) bool { return r.Equal(newRate) }),
		callerID,
	).Return(nil, &apperrors.RateIncreaseRejectedError{
		Current:   decimal.NewFromInt(50_000_000_000),
		Attempted: newRate,
	}).Once()

	token := suite.generateTestToken(callerID, domain.RoleOperator)
	w := suite.doJSON(http.MethodPut, "/api/v1/ledger/rate", dto.SetGlobalRateRequest{Rate: newRate}, token)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestGetEntitlement_ViewerAllowed() {
	holderID := uuid.NewString()
	entitlement := decimal.NewFromInt(1_000_180_000_000)

	suite.mockLedgerService.On("EntitlementOf", mock.Anything, holderID).Return(entitlement, nil).Once()

	token := suite.generateTestToken(uuid.NewString(), domain.RoleViewer)
	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/holders/%s/entitlement", holderID), nil, token)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.EntitlementResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Entitlement.Equal(entitlement))

	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestGetHolder_NotFound() {
	holderID := uuid.NewString()

	suite.mockLedgerService.On("GetHolder", mock.Anything, holderID).Return(nil, apperrors.ErrNotFound).Once()

	token := suite.generateTestToken(uuid.NewString(), domain.RoleViewer)
	w := suite.doJSON(http.MethodGet, "/api/v1/holders/"+holderID, nil, token)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestListHolders_PassesPagination() {
	holders := []domain.Holder{
		{HolderID: "alpha", Principal: decimal.NewFromInt(100)},
		{HolderID: "beta", Principal: decimal.NewFromInt(200)},
	}

	suite.mockLedgerService.On("ListHolders", mock.Anything, 2, "cursor123").Return(holders, "cursor456", nil).Once()

	token := suite.generateTestToken(uuid.NewString(), domain.RoleViewer)
	w := suite.doJSON(http.MethodGet, "/api/v1/holders?limit=2&nextToken=cursor123", nil, token)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListHoldersResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Holders, 2)
	suite.Equal("cursor456", resp.NextToken)

	suite.mockLedgerService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestLedgerHandler(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
