package middleware

import (
	"context"

	"github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// APITokenAuth authenticates requests carrying an x-api-key header directly,
// bypassing the JWT exchange. Requests without the header fall through to
// AuthMiddleware untouched.
func APITokenAuth(tokenSvc services.APITokenSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("x-api-key")
		if apiKey == "" {
			c.Next()
			return
		}

		token, err := tokenSvc.ValidateToken(c.Request.Context(), apiKey)
		if err != nil {
			// Invalid key is not fatal here; JWT auth still gets its turn.
			c.Next()
			return
		}

		ctx := context.WithValue(c.Request.Context(), callerIDKey, token.TokenID)
		ctx = context.WithValue(ctx, callerRoleKey, string(token.Role))
		c.Request = c.Request.WithContext(ctx)

		c.Set(string(callerIDKey), token.TokenID)
		c.Set(string(callerRoleKey), string(token.Role))
		c.Set("authMethod", "api_token")
		c.Next()
	}
}
