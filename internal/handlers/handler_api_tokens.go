package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/dto"
	"github.com/accrualfi/accrual_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// bindErrorMessage flattens gin's binding errors into a single readable line.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request format: " + err.Error()
	}
	msg := "Invalid request format:"
	for _, fe := range verrs {
		msg += " field '" + fe.Field() + "' failed on '" + fe.Tag() + "';"
	}
	return msg
}

// apiTokenHandler handles HTTP requests for API key management.
type apiTokenHandler struct {
	tokenService portssvc.APITokenSvc
}

// newAPITokenHandler creates a new apiTokenHandler.
func newAPITokenHandler(ts portssvc.APITokenSvc) *apiTokenHandler {
	return &apiTokenHandler{
		tokenService: ts,
	}
}

// RegisterAPITokenRoutes registers API key management routes. All of them
// require the operator role.
func RegisterAPITokenRoutes(rg *gin.RouterGroup, tokenService portssvc.APITokenSvc, operatorOnly gin.HandlerFunc) {
	h := newAPITokenHandler(tokenService)

	tokens := rg.Group("/tokens", operatorOnly)
	{
		tokens.POST("", h.createToken)
		tokens.GET("", h.listTokens)
		tokens.DELETE("/:id", h.revokeToken)
	}
}

// createToken godoc
// @Summary Issue a new API key
// @Description Issues an API key with the given role. The plaintext key is shown exactly once.
// @Tags tokens
// @Accept json
// @Produce json
// @Param token body dto.CreateAPITokenRequest true "Token details"
// @Success 201 {object} dto.CreateAPITokenResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to create token"
// @Security BearerAuth
// @Router /tokens [post]
func (h *apiTokenHandler) createToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAPITokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateToken", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	callerID, ok := middleware.GetCallerIDFromContext(c)
	if !ok {
		logger.Error("Caller ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var expiresIn *time.Duration
	if req.ExpiresInDays > 0 {
		d := time.Duration(req.ExpiresInDays) * 24 * time.Hour
		expiresIn = &d
	}

	logger.Info("Received request to create API token", slog.String("name", req.Name), slog.String("role", string(req.Role)))

	plaintext, token, err := h.tokenService.CreateToken(c.Request.Context(), req.Name, req.Role, expiresIn, callerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create token in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		}
		return
	}

	logger.Info("API token created", slog.String("token_id", token.TokenID))
	c.JSON(http.StatusCreated, dto.CreateAPITokenResponse{
		TokenID:   token.TokenID,
		Name:      token.Name,
		Role:      token.Role,
		APIKey:    plaintext,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	})
}

// listTokens godoc
// @Summary List issued API keys
// @Description Lists all unrevoked API keys. Only metadata is returned, never key material.
// @Tags tokens
// @Produce json
// @Success 200 {array} dto.APITokenResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list tokens"
// @Security BearerAuth
// @Router /tokens [get]
func (h *apiTokenHandler) listTokens(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tokens, err := h.tokenService.ListTokens(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list tokens from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tokens"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListAPITokenResponse(tokens))
}

// revokeToken godoc
// @Summary Revoke an API key
// @Description Revokes an API key by ID, invalidating it immediately
// @Tags tokens
// @Produce json
// @Param id path string true "Token ID (UUID format)" format(uuid)
// @Success 204 "Token revoked successfully"
// @Failure 400 {object} map[string]string "Invalid token ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Token not found"
// @Failure 500 {object} map[string]string "Failed to revoke token"
// @Security BearerAuth
// @Router /tokens/{id} [delete]
func (h *apiTokenHandler) revokeToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tokenID := c.Param("id")
	if _, err := uuid.Parse(tokenID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token ID"})
		return
	}

	if err := h.tokenService.RevokeToken(c.Request.Context(), tokenID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Token not found for revocation", slog.String("token_id", tokenID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
		} else {
			logger.Error("Failed to revoke token in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
		}
		return
	}

	logger.Info("API token revoked", slog.String("token_id", tokenID))
	c.Status(http.StatusNoContent)
}
