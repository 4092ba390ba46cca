package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/finwise/finwise_backend/internal/core/domain"
	"github.com/finwise/finwise_backend/internal/core/ports/providers"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
)

// fxThrottleKey is the shared limiter bucket for all outbound provider calls.
const fxThrottleKey = "fx_provider"

// throttlePollInterval is how often a blocked caller rechecks for a free
// throttle slot while its wait budget lasts.
const throttlePollInterval = 50 * time.Millisecond

// ExchangeRateService resolves exchange rates through the cache-aside chain:
// RateCache first, then the throttled RateSource, with every fetched rate
// passing the RateValidator before it is cached or used. No lock is held
// across the provider call; a racing duplicate fetch is wasted work, not a
// correctness problem, because rates are idempotent within a TTL window.
type ExchangeRateService struct {
	source    providers.RateSource
	cache     *RateCache
	validator *RateValidator
	throttle  *limiter.Limiter
	maxWait   time.Duration
	logger    *slog.Logger
}

// NewExchangeRateService creates an ExchangeRateService. throttle may be nil
// to disable outbound rate limiting (tests); maxWait bounds how long a caller
// blocks waiting for a throttle slot before failing with ErrThrottled.
func NewExchangeRateService(
	source providers.RateSource,
	cache *RateCache,
	validator *RateValidator,
	throttle *limiter.Limiter,
	maxWait time.Duration,
	logger *slog.Logger,
) *ExchangeRateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExchangeRateService{
		source:    source,
		cache:     cache,
		validator: validator,
		throttle:  throttle,
		maxWait:   maxWait,
		logger:    logger,
	}
}

// GetRate returns the current rate for a currency pair.
func (s *ExchangeRateService) GetRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	if !domain.IsValidCurrencyCode(fromCode) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrency, fromCode)
	}
	if !domain.IsValidCurrencyCode(toCode) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrency, toCode)
	}
	fromCode = domain.NormalizeCurrencyCode(fromCode)
	toCode = domain.NormalizeCurrencyCode(toCode)

	// Identity rate, never cached and never sent to the provider.
	if fromCode == toCode {
		return &domain.ExchangeRate{
			FromCurrencyCode: fromCode,
			ToCurrencyCode:   toCode,
			Rate:             decimal.NewFromInt(1),
			ObservedAt:       time.Now(),
		}, nil
	}

	if cached, ok := s.cache.Get(fromCode, toCode); ok {
		return &domain.ExchangeRate{
			FromCurrencyCode: fromCode,
			ToCurrencyCode:   toCode,
			Rate:             cached,
			ObservedAt:       time.Now(),
		}, nil
	}

	if err := s.waitForThrottleSlot(ctx); err != nil {
		return nil, err
	}

	quote, err := s.fetchQuote(ctx, fromCode, toCode)
	if err != nil {
		return nil, err
	}

	rate := decimal.NewFromFloat(quote)
	if err := s.validator.Validate(fromCode, toCode, rate); err != nil {
		// An implausible rate is discarded, never cached.
		s.logger.Warn("discarding implausible exchange rate",
			slog.String("from", fromCode),
			slog.String("to", toCode),
			slog.Float64("rate", quote),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.cache.Set(fromCode, toCode, rate)
	return &domain.ExchangeRate{
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		Rate:             rate,
		ObservedAt:       time.Now(),
	}, nil
}

// fetchQuote calls the provider, converting panics and non-finite quotes into
// ErrProvider so provider internals never escape this layer.
func (s *ExchangeRateService) fetchQuote(ctx context.Context, fromCode, toCode string) (quote float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("rate provider panicked",
				slog.String("from", fromCode),
				slog.String("to", toCode),
				slog.Any("panic", r),
			)
			err = fmt.Errorf("%w: provider panic", apperrors.ErrProvider)
		}
	}()

	quote, err = s.source.FetchRate(ctx, fromCode, toCode)
	if err != nil {
		return 0, fmt.Errorf("%w: %s to %s", apperrors.ErrProvider, fromCode, toCode)
	}
	if math.IsNaN(quote) || math.IsInf(quote, 0) {
		return 0, fmt.Errorf("%w: non-finite quote for %s to %s", apperrors.ErrProvider, fromCode, toCode)
	}
	return quote, nil
}

// waitForThrottleSlot blocks until the outbound limiter grants a slot, the
// context is cancelled, or the wait budget runs out.
func (s *ExchangeRateService) waitForThrottleSlot(ctx context.Context) error {
	if s.throttle == nil {
		return nil
	}

	deadline := time.Now().Add(s.maxWait)
	for {
		// Peek first so waiting callers do not inflate the window they are
		// waiting on; Get runs only to claim a slot that looks free.
		lctx, err := s.throttle.Peek(ctx, fxThrottleKey)
		if err != nil {
			return fmt.Errorf("%w: throttle check failed", apperrors.ErrProvider)
		}
		if !lctx.Reached {
			lctx, err = s.throttle.Get(ctx, fxThrottleKey)
			if err != nil {
				return fmt.Errorf("%w: throttle check failed", apperrors.ErrProvider)
			}
			if !lctx.Reached {
				return nil
			}
			// A racing caller claimed the slot between Peek and Get.
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: waited %s for a provider slot", apperrors.ErrThrottled, s.maxWait)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", apperrors.ErrProvider, ctx.Err())
		case <-time.After(throttlePollInterval):
		}
	}
}
