// Package errors provides structured error types used across the application.
// We prefer these over raw fmt.Errorf strings so callers can classify failures
// with errors.As and so every error carries where it happened.
package errors

import (
	"errors"
	"fmt"
)

// ValidationError indicates invalid input/config/state provided by a caller.
type ValidationError struct {
	Op  string // where it happened (package.Function)
	Msg string // human friendly message (no PII)
	Err error  // underlying cause (optional)
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("validation: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("validation: %s: %s", e.Op, e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidation(op, msg string, err error) error {
	return &ValidationError{Op: op, Msg: msg, Err: err}
}

// LookupError represents a failure of the employee store or another lookup
// collaborator: the search itself could not be performed. Distinct from a
// query that legitimately matched nothing, which is a result, not an error.
type LookupError struct {
	Op  string
	Msg string
	Err error
}

func (e *LookupError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("lookup: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("lookup: %s: %s", e.Op, e.Msg)
}

func (e *LookupError) Unwrap() error { return e.Err }

func NewLookup(op, msg string, err error) error { return &LookupError{Op: op, Msg: msg, Err: err} }

// ExternalError represents failures in external services (OpenAI, HTTP APIs).
type ExternalError struct {
	Op     string
	Msg    string
	Err    error
	System string // system name e.g. "openai"
}

func (e *ExternalError) Error() string {
	if e == nil {
		return "<nil>"
	}
	sys := e.System
	if sys == "" {
		sys = "external"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", sys, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", sys, e.Op, e.Msg)
}

func (e *ExternalError) Unwrap() error { return e.Err }

func NewExternal(op, system, msg string, err error) error {
	return &ExternalError{Op: op, System: system, Msg: msg, Err: err}
}

// AuthError represents authentication failures (missing, invalid, expired or
// revoked API keys).
type AuthError struct {
	Op  string
	Msg string
	Err error
}

func (e *AuthError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("auth: %s: %s", e.Op, e.Msg)
}

func (e *AuthError) Unwrap() error { return e.Err }

func NewAuth(op, msg string, err error) error { return &AuthError{Op: op, Msg: msg, Err: err} }

// Kind sentinels for errors.Is style checks without type assertions.
var (
	ErrValidation = &ValidationError{}
	ErrLookup     = &LookupError{}
	ErrExternal   = &ExternalError{}
	ErrAuth       = &AuthError{}
)

// Is reports whether err matches the kind of target. Delegates to errors.As
// with the zero-value pointer of each type so wrapped errors are found.
func Is(err, target error) bool {
	if err == nil || target == nil {
		return errors.Is(err, target)
	}
	switch target.(type) {
	case *ValidationError:
		var v *ValidationError
		return errors.As(err, &v)
	case *LookupError:
		var l *LookupError
		return errors.As(err, &l)
	case *ExternalError:
		var x *ExternalError
		return errors.As(err, &x)
	case *AuthError:
		var a *AuthError
		return errors.As(err, &a)
	default:
		return errors.Is(err, target)
	}
}
