package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	UseMemoryDB  bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// StrictRateDecrease requires every global rate change to strictly
	// decrease the rate; setting the same value again is rejected.
	StrictRateDecrease bool

	// InitialGlobalRate seeds the ledger on first boot, as integer
	// rate units per second.
	InitialGlobalRate string

	// BootstrapTokenName, when set, issues an OPERATOR API key on first boot
	// and prints it to the log so the instance can be administered.
	BootstrapTokenName string

	RateLimitFormatted string

	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("USE_MEMORY_DB", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "accrual-ledger-app")
	viper.SetDefault("STRICT_RATE_DECREASE", true)
	viper.SetDefault("INITIAL_GLOBAL_RATE", "0")
	viper.SetDefault("BOOTSTRAP_TOKEN_NAME", "")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://us.i.posthog.com")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.UseMemoryDB = viper.GetBool("USE_MEMORY_DB")
	if cfg.DatabaseURL == "" && !cfg.UseMemoryDB {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.StrictRateDecrease = viper.GetBool("STRICT_RATE_DECREASE")
	cfg.InitialGlobalRate = viper.GetString("INITIAL_GLOBAL_RATE")
	cfg.BootstrapTokenName = viper.GetString("BOOTSTRAP_TOKEN_NAME")
	cfg.RateLimitFormatted = viper.GetString("RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	return cfg, nil
}
