package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	portsrepo "github.com/accrualfi/accrual_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/accrualfi/accrual_ledger_app/internal/core/ports/services"
	"github.com/accrualfi/accrual_ledger_app/internal/core/services"
	"github.com/accrualfi/accrual_ledger_app/internal/handlers"
	"github.com/accrualfi/accrual_ledger_app/internal/middleware"
	"github.com/accrualfi/accrual_ledger_app/internal/repositories/database/memory"
	"github.com/accrualfi/accrual_ledger_app/internal/repositories/database/pgsql"
	"github.com/accrualfi/accrual_ledger_app/internal/utils"
	"github.com/accrualfi/accrual_ledger_app/pkg/config"
	"github.com/accrualfi/accrual_ledger_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Accrual Ledger API
// @version 1.0
// @description Interest-bearing token ledger with per-holder rate locking.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, cleanup, err := buildRepositories(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize repositories", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	if err := seedLedger(context.Background(), cfg, repos, logger); err != nil {
		logger.Error("Failed to seed ledger state", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serviceContainer := services.NewServiceContainer(
		repos.LedgerRepo,
		repos.APITokenRepo,
		services.ContainerConfig{
			StrictRateDecrease: cfg.StrictRateDecrease,
			JWTSecret:          cfg.JWTSecret,
			JWTIssuer:          cfg.JWTIssuer,
			JWTExpiry:          cfg.JWTExpiryDuration,
		},
	)

	if err := bootstrapOperatorToken(context.Background(), cfg, serviceContainer, logger); err != nil {
		logger.Error("Failed to bootstrap operator token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	// Global middleware (logging, recovery, CORS, analytics)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.Default(),
		middleware.PosthogMiddleware(posthogClient),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildRepositories selects the storage backend. The memory driver backs
// local development; Postgres is the production path and runs migrations on
// boot.
func buildRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.UseMemoryDB {
		logger.Warn("Using in-memory storage, all data is lost on shutdown")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	if err := runMigrations(cfg, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// runMigrations applies all pending schema migrations using a temporary
// database/sql connection over the pgx stdlib driver.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// seedLedger initializes the global ledger row on first boot.
func seedLedger(ctx context.Context, cfg *config.Config, repos portsrepo.RepositoryProvider, logger *slog.Logger) error {
	initialRate, err := decimal.NewFromString(cfg.InitialGlobalRate)
	if err != nil {
		return err
	}
	if err := repos.LedgerRepo.InitLedgerState(ctx, initialRate, "system"); err != nil {
		return err
	}
	logger.Info("Ledger state ready", slog.String("initial_global_rate", initialRate.String()))
	return nil
}

// bootstrapOperatorToken issues a first OPERATOR API key when configured and
// no key exists yet, so a fresh instance can be administered. The plaintext
// key is logged once; rotate it through the API afterwards.
func bootstrapOperatorToken(ctx context.Context, cfg *config.Config, svcs *portssvc.ServiceContainer, logger *slog.Logger) error {
	if cfg.BootstrapTokenName == "" {
		return nil
	}

	existing, err := svcs.APIToken.ListTokens(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	plaintext, token, err := svcs.APIToken.CreateToken(ctx, cfg.BootstrapTokenName, domain.RoleOperator, nil, "system")
	if err != nil {
		return err
	}
	logger.Warn("Bootstrap operator API key issued, store it now, it will not be shown again",
		slog.String("token_id", token.TokenID),
		slog.String("api_key", plaintext))
	return nil
}
