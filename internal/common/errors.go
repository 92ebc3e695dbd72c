// Package common defines shared constants and sentinel errors used across
// brandforge layers. Callers should use errors.Is / errors.As to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Token errors; both match ErrorUnauthorized.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrorUnauthorized)
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrorUnauthorized)

	// Input guard errors.
	ErrValidation = errors.New("validation error")

	// Credit ledger errors.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// Generation errors.
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrInvalidAIResponse = errors.New("invalid AI response")

	// Refinement fell back to the previous artifact.
	ErrRefinementDegraded = errors.New("refinement degraded")

	// Storage is unavailable or failed mid-request.
	ErrPersistence = errors.New("persistence error")

	// Rejected by the rate limiter gate.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError describes caller-fixable input problems. It matches
// ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientCreditsError carries the balance snapshot taken when a
// deduction was refused. It matches ErrInsufficientCredits.
type InsufficientCreditsError struct {
	Required int64
	Balance  int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, balance %d", e.Required, e.Balance)
}

func (e *InsufficientCreditsError) Is(target error) bool { return target == ErrInsufficientCredits }
