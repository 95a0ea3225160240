// Package errors defines the coded errors blendview reports.
//
// Every failure that reaches a user carries a [Code]. The CLI prints the
// message, the HTTP server maps the code to a status, and the inspector turns
// the inspection codes (NO_GRAPH, INVALID_GRAPH, EMPTY_GRAPH,
// GRAPH_TOO_LARGE) into display states instead of failures.
//
//	err := errors.New(errors.ErrCodeInvalidSettings, "aspect ratio must be positive: %v", r)
//	if errors.Is(err, errors.ErrCodeInvalidSettings) {
//	    ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidScene, err, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

// Inspection outcomes. The inspector reports these as states.
const (
	ErrCodeNoGraph       Code = "NO_GRAPH"
	ErrCodeInvalidGraph  Code = "INVALID_GRAPH"
	ErrCodeEmptyGraph    Code = "EMPTY_GRAPH"
	ErrCodeGraphTooLarge Code = "GRAPH_TOO_LARGE"
)

// Rejected input.
const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidSettings Code = "INVALID_SETTINGS"
	ErrCodeInvalidScene    Code = "INVALID_SCENE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
)

const (
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// Inspection reports whether c describes the state of an inspected graph
// rather than a failed request.
func (c Code) Inspection() bool {
	switch c {
	case ErrCodeNoGraph, ErrCodeInvalidGraph, ErrCodeEmptyGraph, ErrCodeGraphTooLarge:
		return true
	}
	return false
}

// Error carries a code, a message for the user and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause. The cause stays reachable through errors.Is and
// errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost coded error, without code
// or cause, falling back to err.Error().
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
