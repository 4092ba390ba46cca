package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidCurrency indicates a malformed or unsupported currency code.
var ErrInvalidCurrency = errors.New("invalid currency code")

// ErrNonPositiveRate indicates the market-data provider returned a zero or negative rate.
var ErrNonPositiveRate = errors.New("exchange rate must be positive")

// ErrRateOutOfRange indicates a rate fell outside the configured plausibility range
// for its currency pair.
var ErrRateOutOfRange = errors.New("exchange rate outside plausible range")

// ErrProvider indicates the market-data provider could not supply a usable quote
// (network failure, timeout, malformed response). Provider internals are never
// surfaced beyond this sentinel.
var ErrProvider = errors.New("rate provider error")

// ErrThrottled indicates an outbound rate lookup waited its full budget for a
// throttle slot and gave up rather than exceeding the provider request limit.
var ErrThrottled = errors.New("rate provider throttled")

// ErrMigrationConflict indicates a currency migration was requested while another
// one is still pending or in progress for the same user.
var ErrMigrationConflict = errors.New("currency migration already in progress")
