package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies failures inside the evaluation pipeline.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "INVALID_INPUT"
	KindProviderTimeout    ErrorKind = "PROVIDER_TIMEOUT"
	KindProviderError      ErrorKind = "PROVIDER_ERROR"
	KindInsufficientSample ErrorKind = "INSUFFICIENT_SAMPLE"
	KindAmbiguousMatch     ErrorKind = "AMBIGUOUS_MATCH"
	KindFatal              ErrorKind = "FATAL_ERROR"
)

// Custom errors
var (
	ErrMissingSport         = errors.New("sport is required")
	ErrUnsupportedSport     = errors.New("unsupported sport")
	ErrMissingSubject       = errors.New("subject name is required")
	ErrMissingStatisticLine = errors.New("statistic line is required")
	ErrUnknownStatistic     = errors.New("statistic not recognised")
	ErrNoCredentials        = errors.New("provider credentials not configured")
	ErrNoOdds               = errors.New("no odds available")
	ErrNoSample             = errors.New("no sample available")
)

// EvalError wraps an error with its kind and the operation that produced it.
type EvalError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *EvalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// NewEvalError creates a new EvalError.
func NewEvalError(kind ErrorKind, op string, err error) *EvalError {
	return &EvalError{Kind: kind, Op: op, Err: err}
}

// KindOf classifies an arbitrary error. Deadline errors are timeouts, anything
// else without an explicit kind is a provider error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindProviderTimeout
	}
	return KindProviderError
}
