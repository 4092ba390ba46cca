package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/finwise/finwise_backend/internal/core/services"
	"github.com/finwise/finwise_backend/internal/dto"
	"github.com/finwise/finwise_backend/internal/handlers"
	"github.com/finwise/finwise_backend/internal/middleware"
	"github.com/finwise/finwise_backend/internal/repositories/database/pgsql"
	"github.com/finwise/finwise_backend/internal/repositories/marketdata"
	"github.com/finwise/finwise_backend/pkg/config"
	"github.com/finwise/finwise_backend/pkg/database"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)

	// A previous process may have died mid-run; interrupted runs cannot be
	// resumed, so mark them failed before accepting new migrations.
	failed, err := repos.MigrationRepo.FailNonTerminalMigrations(context.Background(),
		"currency migration interrupted by service restart")
	if err != nil {
		logger.Error("Failed to clean up interrupted migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if failed > 0 {
		logger.Warn("Marked interrupted currency migrations as failed", slog.Int64("count", failed))
	}

	rateRanges, err := services.ParseRateRanges(cfg.RateRanges)
	if err != nil {
		logger.Error("Failed to parse RATE_RANGES", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Outbound throttle for the market data provider.
	providerRate, err := limiter.NewRateFromFormatted(cfg.RateProviderRateLimit)
	if err != nil {
		logger.Error("Invalid RATE_PROVIDER_RATE_LIMIT", slog.String("error", err.Error()))
		os.Exit(1)
	}
	providerThrottle := limiter.New(memory.NewStore(), providerRate)

	rateSource := marketdata.NewClient(cfg.RateProviderURL, cfg.RateProviderTimeout)

	serviceContainer := services.NewServiceContainer(services.ContainerConfig{
		RateCacheTTL:        cfg.RateCacheTTL,
		EntityValueCacheTTL: cfg.EntityValueCacheTTL,
		RateRanges:          rateRanges,
		ProviderMaxWait:     cfg.RateProviderMaxWait,
	}, repos, rateSource, providerThrottle, logger)

	// Inbound per-IP rate limit for the API.
	httpRate, err := limiter.NewRateFromFormatted(cfg.HTTPRateLimit)
	if err != nil {
		logger.Error("Invalid HTTP_RATE_LIMIT", slog.String("error", err.Error()))
		os.Exit(1)
	}
	httpLimiter := limiter.New(memory.NewStore(), httpRate)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := dto.RegisterValidations(); err != nil {
		logger.Error("Failed to register request validations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, httpLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations from the migrations
// directory over a temporary database/sql connection.
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
	if err := migrationDB.Ping(); err != nil {
		return err
	}

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
