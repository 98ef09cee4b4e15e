package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Sentinel kinds (use with errors.Is)
// -----------------------------------------------------------------------------

var (
	ErrEmptyResult      = errors.New("empty result")
	ErrProvider         = errors.New("provider error")
	ErrNoOverlap        = errors.New("no overlapping dates")
	ErrInsufficientData = errors.New("insufficient data")
	ErrForecastFailed   = errors.New("forecast failed")
	ErrValidation       = errors.New("validation error")
	ErrConfiguration    = errors.New("configuration error")
	ErrDatabase         = errors.New("database error")
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
	kind    error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

func (e *DashboardError) Is(target error) bool {
	return e.kind != nil && e.kind == target
}

// Distinct error types for type assertions
type EmptyResultError struct{ DashboardError }
type ProviderError struct{ DashboardError }
type NoOverlapError struct{ DashboardError }
type InsufficientDataError struct{ DashboardError }
type ForecastError struct{ DashboardError }
type ValidationError struct{ DashboardError }
type ConfigurationError struct{ DashboardError }
type DatabaseError struct{ DashboardError }

// -----------------------------------------------------------------------------

func NewEmptyResultError(ticker string) error {
	return &EmptyResultError{DashboardError{
		Message: fmt.Sprintf("no data for $%s was found, make sure that the ticker is correct", ticker),
		kind:    ErrEmptyResult,
	}}
}

func NewProviderError(message string, cause error) error {
	return &ProviderError{DashboardError{Message: message, Cause: cause, kind: ErrProvider}}
}

func NewNoOverlapError(subject, benchmark string) error {
	return &NoOverlapError{DashboardError{
		Message: fmt.Sprintf("%s and %s share no overlapping dates", subject, benchmark),
		kind:    ErrNoOverlap,
	}}
}

func NewInsufficientDataError(message string) error {
	return &InsufficientDataError{DashboardError{Message: message, kind: ErrInsufficientData}}
}

func NewForecastError(message string, cause error) error {
	return &ForecastError{DashboardError{Message: message, Cause: cause, kind: ErrForecastFailed}}
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{DashboardError{Message: fmt.Sprintf(format, args...), kind: ErrValidation}}
}

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{DashboardError{Message: message, Cause: cause, kind: ErrConfiguration}}
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{DashboardError{Message: message, Cause: cause, kind: ErrDatabase}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to attempts times, doubling baseDelay after each failure.
// It stops early on a Permanent error or when ctx is done.
func RetryWithBackoff(ctx context.Context, attempts int, baseDelay time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	delay := baseDelay

	for attempt := 0; attempt < attempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
