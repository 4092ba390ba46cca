package services

import (
	"log/slog"
	"time"

	"github.com/finwise/finwise_backend/internal/core/domain"
	"github.com/finwise/finwise_backend/internal/core/ports/providers"
	portsrepo "github.com/finwise/finwise_backend/internal/core/ports/repositories"
	portssvc "github.com/finwise/finwise_backend/internal/core/ports/services"
	"github.com/ulule/limiter/v3"
)

// ContainerConfig carries the tunables the service layer needs; the HTTP-level
// configuration stays in pkg/config.
type ContainerConfig struct {
	RateCacheTTL        time.Duration
	EntityValueCacheTTL time.Duration
	RateRanges          map[string]domain.RateRange
	ProviderMaxWait     time.Duration
}

// NewServiceContainer wires repositories, the market-data source and the
// outbound throttle into the full service graph. All shared mutable state
// (caches, throttle) is constructed here and injected, never package-global.
func NewServiceContainer(
	cfg ContainerConfig,
	repos portsrepo.RepositoryProvider,
	source providers.RateSource,
	providerThrottle *limiter.Limiter,
	logger *slog.Logger,
) *portssvc.ServiceContainer {
	rateCache := NewRateCache(cfg.RateCacheTTL)
	valueCache := NewEntityValueCache(cfg.EntityValueCacheTTL)
	validator := NewRateValidator(cfg.RateRanges)

	rates := NewExchangeRateService(source, rateCache, validator, providerThrottle, cfg.ProviderMaxWait, logger)
	conversion := NewConversionService(rates, valueCache, repos.WalletRepo)

	migration := NewCurrencyMigrationService(
		repos.MigrationRepo,
		repos.WalletRepo,
		repos.TransactionRepo,
		repos.BudgetRepo,
		repos.InvestmentRepo,
		conversion,
		valueCache,
		logger,
	)

	return &portssvc.ServiceContainer{
		Conversion: conversion,
		Migration:  migration,
		User:       NewUserService(repos.UserRepo, migration),
	}
}

// Compile-time interface checks.
var (
	_ portssvc.ConversionSvcFacade = (*ConversionService)(nil)
	_ portssvc.MigrationSvcFacade  = (*CurrencyMigrationService)(nil)
	_ portssvc.UserSvcFacade       = (*UserService)(nil)
)
