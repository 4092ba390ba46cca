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
	JWTSecret    string

	// Market data provider
	RateProviderURL       string
	RateProviderTimeout   time.Duration
	RateProviderRateLimit string // ulule/limiter formatted rate, e.g. "10-S"
	RateProviderMaxWait   time.Duration

	// Caches
	RateCacheTTL        time.Duration
	EntityValueCacheTTL time.Duration

	// Plausibility ranges for rate validation, e.g. "USD:VND=20000-30000,EUR:USD=0.8-1.6"
	RateRanges string

	// Inbound HTTP rate limit, ulule/limiter formatted, e.g. "100-M"
	HTTPRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("RATE_PROVIDER_URL", "http://localhost:9090")
	viper.SetDefault("RATE_PROVIDER_TIMEOUT", "5s")
	viper.SetDefault("RATE_PROVIDER_RATE_LIMIT", "10-S")
	viper.SetDefault("RATE_PROVIDER_MAX_WAIT", "10s")
	viper.SetDefault("RATE_CACHE_TTL", "1h")
	viper.SetDefault("ENTITY_VALUE_CACHE_TTL", "24h")
	viper.SetDefault("RATE_RANGES", "")
	viper.SetDefault("HTTP_RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.RateProviderURL = viper.GetString("RATE_PROVIDER_URL")
	cfg.RateProviderTimeout = parseDuration("RATE_PROVIDER_TIMEOUT", 5*time.Second)
	cfg.RateProviderRateLimit = viper.GetString("RATE_PROVIDER_RATE_LIMIT")
	cfg.RateProviderMaxWait = parseDuration("RATE_PROVIDER_MAX_WAIT", 10*time.Second)
	cfg.RateCacheTTL = parseDuration("RATE_CACHE_TTL", time.Hour)
	cfg.EntityValueCacheTTL = parseDuration("ENTITY_VALUE_CACHE_TTL", 24*time.Hour)
	cfg.RateRanges = viper.GetString("RATE_RANGES")
	cfg.HTTPRateLimit = viper.GetString("HTTP_RATE_LIMIT")

	return cfg, nil
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
