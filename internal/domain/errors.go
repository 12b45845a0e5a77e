package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy for the pipeline. Every external call site and guarded
// store write classifies its failures into one of these so callers can
// decide between retry, skip, and abort without string matching.

// TransientError is retryable with backoff. A non-zero Cooldown means the
// upstream rate-limited us and we should wait at least that long.
type TransientError struct {
	Op       string
	Err      error
	Cooldown time.Duration
}

func (e *TransientError) Error() string { return fmt.Sprintf("%s: transient: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError means the single item failed for good (auth, 404, bad
// input). Skip it; never retry.
type PermanentError struct {
	Op  string
	Err error
}

func (e *PermanentError) Error() string { return fmt.Sprintf("%s: permanent: %v", e.Op, e.Err) }
func (e *PermanentError) Unwrap() error { return e.Err }

// ValidationError marks malformed evaluator output. The lead is left
// unadvanced for a later re-attempt; we never guess at missing fields.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: validation: %v", e.Op, e.Err) }
func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError means a conditional update lost a race with an overlapping
// invocation. The caller should re-read and re-decide, never force.
type ConflictError struct {
	EntityID string
	Expected Status
	Actual   Status
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("lead %s: conflict: %s", e.EntityID, e.Reason)
	}
	if e.Actual != "" {
		return fmt.Sprintf("lead %s: conflict: expected status %q, found %q", e.EntityID, e.Expected, e.Actual)
	}
	return fmt.Sprintf("lead %s: conflict: expected status %q", e.EntityID, e.Expected)
}

// ConfigError means required configuration or credentials are missing.
// The run aborts before any mutation.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config %s: %v", e.Field, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// CooldownOf returns the rate-limit cool-down attached to err, if any.
func CooldownOf(err error) time.Duration {
	var t *TransientError
	if errors.As(err, &t) {
		return t.Cooldown
	}
	return 0
}

var ErrLeadNotFound = errors.New("lead not found")
