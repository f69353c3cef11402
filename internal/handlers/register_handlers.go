package handlers

import (
	"github.com/accrualfi/accrual_ledger_app/cmd/docs"
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/middleware"
	"github.com/accrualfi/accrual_ledger_app/pkg/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Health check stays outside every auth layer.
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	RegisterAuthRoutes(r, services.Auth)

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimitFormatted)
	if err != nil {
		rate, _ = limiter.NewRateFromFormatted("100-M")
	}
	ipLimiter := limiter.New(limitermem.NewStore(), rate)

	// API keys are accepted directly; requests without one fall through to
	// the JWT check.
	v1 := r.Group("/api/v1",
		middleware.RateLimit(ipLimiter),
		middleware.APITokenAuth(services.APIToken),
		middleware.AuthMiddleware(cfg.JWTSecret),
	)

	operatorOnly := middleware.RequireRole(domain.RoleOperator)

	RegisterLedgerRoutes(v1, services.Ledger, operatorOnly)
	RegisterHolderRoutes(v1, services.Ledger)
	RegisterAPITokenRoutes(v1, services.APIToken, operatorOnly)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
