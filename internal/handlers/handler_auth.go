package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/accrualfi/accrual_ledger_app/internal/apperrors"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/dto"
	"github.com/accrualfi/accrual_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"
)

// authHandler exchanges API keys for JWTs.
type authHandler struct {
	authService portssvc.AuthSvc
}

// newAuthHandler creates a new authHandler.
func newAuthHandler(as portssvc.AuthSvc) *authHandler {
	return &authHandler{
		authService: as,
	}
}

// RegisterAuthRoutes registers the public authentication routes. The token
// exchange is rate limited per IP since it is the brute-force surface.
func RegisterAuthRoutes(r *gin.Engine, authService portssvc.AuthSvc) {
	h := newAuthHandler(authService)

	rate, _ := limiter.NewRateFromFormatted("5-M")
	store := limitermem.NewStore()
	ipLimiter := limiter.New(store, rate)

	auth := r.Group("/auth")
	{
		auth.POST("/token", middleware.RateLimit(ipLimiter), h.issueToken)
	}
}

// issueToken godoc
// @Summary Exchange an API key for a JWT
// @Description Validates the API key and returns a short-lived bearer token carrying the key's role
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.IssueTokenRequest true "API key"
// @Success 200 {object} dto.IssueTokenResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Invalid API key"
// @Failure 500 {object} map[string]string "Failed to issue token"
// @Router /auth/token [post]
func (h *authHandler) issueToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for IssueToken", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	token, expiresAt, role, err := h.authService.IssueToken(c.Request.Context(), req.APIKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrForbidden) || errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("API key rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		} else {
			logger.Error("Failed to issue token", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		}
		return
	}

	logger.Info("JWT issued", slog.String("role", role))
	c.JSON(http.StatusOK, dto.IssueTokenResponse{
		Token:     token,
		Role:      role,
		ExpiresAt: expiresAt,
	})
}
