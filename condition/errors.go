package condition

import (
	"errors"
	"fmt"
	"time"
)

// ConfigError reports an invalid condition configuration: an empty
// composite, a negative delay, or a delay that is not shorter than a finite
// timeout.
//
// ConfigError is raised synchronously at the offending call and is never
// recorded as a node outcome.
type ConfigError struct {
	// Alias identifies the offending node, when one exists.
	Alias string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Alias != "" {
		return fmt.Sprintf("invalid condition %q: %s", e.Alias, e.Message)
	}
	return fmt.Sprintf("invalid condition: %s", e.Message)
}

// PredicateError wraps a failure raised by a leaf predicate. The condition
// that failed is recorded as a Failed outcome before the error propagates.
type PredicateError struct {
	Alias string
	Cause error
}

// Error implements the error interface.
func (e *PredicateError) Error() string {
	return fmt.Sprintf("condition %q failed: %v", e.Alias, e.Cause)
}

// Unwrap exposes the predicate's own error for errors.Is/As chains.
func (e *PredicateError) Unwrap() error { return e.Cause }

// TimeoutError reports that a condition did not resolve within its timeout.
//
// The underlying work is not preempted: the predicate may still be running
// when this error surfaces, and any outcomes it produces afterwards are
// discarded by the caller that timed out.
type TimeoutError struct {
	Alias   string
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("condition %q timed out after %s", e.Alias, e.Timeout)
}

// CancelledError reports that a dispatched condition was cancelled by a
// sibling's short-circuit before it started executing.
type CancelledError struct {
	Alias string
}

// Error implements the error interface.
func (e *CancelledError) Error() string {
	return fmt.Sprintf("condition %q cancelled before it started", e.Alias)
}

// IsConfig returns true if the error is a ConfigError.
// Uses errors.As to handle wrapped errors.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsPredicate returns true if the error is a PredicateError.
// Uses errors.As to handle wrapped errors.
func IsPredicate(err error) bool {
	var pe *PredicateError
	return errors.As(err, &pe)
}

// IsTimeout returns true if the error is a TimeoutError.
// Uses errors.As to handle wrapped errors.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsCancelled returns true if the error is a CancelledError.
// Uses errors.As to handle wrapped errors.
func IsCancelled(err error) bool {
	var ce *CancelledError
	return errors.As(err, &ce)
}
