// Package gameerr defines the error taxonomy shared by the engine packages.
//
// Configuration errors are fatal and surface before a session starts.
// Illegal actions are recoverable rejections of a single command.
// Invariant violations indicate a programming defect: they panic when strict
// invariants are enabled and are otherwise logged while the caller clamps.
package gameerr

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
)

// Code categorizes an error.
type Code string

const (
	// CodeUnknown indicates an error that did not originate here
	CodeUnknown Code = "unknown"

	// CodeConfiguration indicates invalid dimensions, stats or settings
	CodeConfiguration Code = "configuration"

	// CodeIllegalAction indicates a command that is not legal in the current state
	CodeIllegalAction Code = "illegal_action"

	// CodeInvariantViolation indicates broken internal state
	CodeInvariantViolation Code = "invariant_violation"

	// CodeNotFound indicates a missing save or definition
	CodeNotFound Code = "not_found"
)

// Error is an error with a code and optional metadata.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new error with formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err, keeping its code if it already carries one.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var gErr *Error
	if errors.As(err, &gErr) {
		return &Error{
			Code:    gErr.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(gErr.Meta),
		}
	}

	return &Error{Code: CodeUnknown, Message: message, Cause: err}
}

// Configuration creates a configuration error
func Configuration(message string) *Error {
	return New(CodeConfiguration, message)
}

// Configurationf creates a formatted configuration error
func Configurationf(format string, args ...any) *Error {
	return Newf(CodeConfiguration, format, args...)
}

// IllegalAction creates an illegal action error
func IllegalAction(message string) *Error {
	return New(CodeIllegalAction, message)
}

// IllegalActionf creates a formatted illegal action error
func IllegalActionf(format string, args ...any) *Error {
	return Newf(CodeIllegalAction, format, args...)
}

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// Is checks if the error carries a specific code
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	return Is(err, CodeConfiguration)
}

// IsIllegalAction reports whether err is an illegal action rejection.
func IsIllegalAction(err error) bool {
	return Is(err, CodeIllegalAction)
}

// IsNotFound reports whether err is a not found error.
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// CodeOf returns the code of err, or "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return CodeUnknown
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

var strict atomic.Bool

// SetStrict switches invariant violations between panicking (true) and
// logging (false).
func SetStrict(enabled bool) {
	strict.Store(enabled)
}

// Strict reports whether invariant violations panic.
func Strict() bool {
	return strict.Load()
}

// Violation reports broken internal state. It always logs; in strict mode it
// panics with an invariant violation error. Callers clamp after it returns.
func Violation(message string, args ...any) {
	logger.Error("Invariant violation: "+message, args...)
	if strict.Load() {
		err := New(CodeInvariantViolation, message)
		for i := 0; i+1 < len(args); i += 2 {
			if key, ok := args[i].(string); ok {
				err.WithMeta(key, args[i+1])
			}
		}
		panic(err)
	}
}
