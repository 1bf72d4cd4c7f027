// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
)

// ErrorCode is the closed set of failure classes surfaced by the client
// Values are stable; callers switch on them exhaustively
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeNetwork is for transport failures (refused, DNS, per-call timeout)
	ErrorCodeNetwork

	// ErrorCodeUnauthorized is for 401, non-quota 403 and a missing token
	ErrorCodeUnauthorized

	// ErrorCodeQuotaExceeded is for 403 responses reporting no available runs
	ErrorCodeQuotaExceeded

	// ErrorCodeValidation is for 400 responses and rejected local input
	ErrorCodeValidation

	// ErrorCodeNotFound is for 404 responses and missing local model files
	ErrorCodeNotFound

	// ErrorCodeServer is for 5xx and any other unmapped >= 400 status
	ErrorCodeServer

	// ErrorCodeProcessing is for requests that ended in error or without results
	ErrorCodeProcessing

	// ErrorCodeConfig is for local credential/config file problems
	ErrorCodeConfig

	// ErrorCodeTimeout is for a wait that exceeded its budget or was cancelled
	ErrorCodeTimeout

	// ErrorCodeJSON is for response bodies that could not be decoded
	ErrorCodeJSON
)

var codeNames = [...]string{
	ErrorCodeUnknown:       "unknown",
	ErrorCodeNetwork:       "network",
	ErrorCodeUnauthorized:  "unauthorized",
	ErrorCodeQuotaExceeded: "quota_exceeded",
	ErrorCodeValidation:    "validation",
	ErrorCodeNotFound:      "not_found",
	ErrorCodeServer:        "server",
	ErrorCodeProcessing:    "processing",
	ErrorCodeConfig:        "config",
	ErrorCodeTimeout:       "timeout",
	ErrorCodeJSON:          "json",
}

// String returns a stable snake_case name, used as a log and metrics label
func (c ErrorCode) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// ExitCode maps an ErrorCode to a process exit status for command line tools
func ExitCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNetwork:
		return 3
	case ErrorCodeUnauthorized:
		return 4
	case ErrorCodeQuotaExceeded:
		return 5
	case ErrorCodeValidation:
		return 6
	case ErrorCodeNotFound:
		return 7
	case ErrorCodeServer:
		return 8
	case ErrorCodeProcessing:
		return 9
	case ErrorCodeConfig:
		return 10
	case ErrorCodeTimeout:
		return 11
	default:
		return 1
	}
}

// Error is the structured error type with wrapping and metadata
// msg is human facing; code is machine facing
// field is optional (for validation); op is optional operation tag
// status is the HTTP status when the failure came from the server
// runs is the remaining run count for quota failures (-1 when unknown)
// orig is the wrapped cause
type Error struct {
	orig   error
	msg    string
	code   ErrorCode
	field  string
	op     string
	status int
	runs   int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Message returns the message without the wrapped cause
func (e *Error) Message() string { return e.msg }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// Status returns the HTTP status the failure was classified from, 0 if local
func (e *Error) Status() int { return e.status }

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return err != nil && CodeOf(err) == code }

// StatusOf returns the HTTP status carried by err, 0 when none
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.status
	}
	return 0
}

// AvailableRuns returns the remaining run count carried by a quota error
// ok is false when err is not a quota error
func AvailableRuns(err error) (runs int, ok bool) {
	e, found := As(err)
	if !found || e.code != ErrorCodeQuotaExceeded {
		return 0, false
	}
	if e.runs < 0 {
		return 0, true
	}
	return e.runs, true
}

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// WithStatus attaches an HTTP status to an *Error (copy-on-write)
func WithStatus(err error, status int) error {
	if e, ok := As(err); ok {
		c := *e
		c.status = status
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg, runs: -1} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), runs: -1}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig, runs: -1}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig, runs: -1}
}

// WrapIf wraps only when err != nil (helper for 1-liners)
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// Sugar

// Networkf returns a transport failure
func Networkf(format string, a ...any) error { return Newf(ErrorCodeNetwork, format, a...) }

// Unauthorizedf returns an authentication failure
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }

// Validationf returns a validation failure
func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// Processingf returns a processing failure
func Processingf(format string, a ...any) error { return Newf(ErrorCodeProcessing, format, a...) }

// Configf returns a local configuration failure
func Configf(format string, a ...any) error { return Newf(ErrorCodeConfig, format, a...) }

// Timeoutf returns a timeout failure
func Timeoutf(format string, a ...any) error { return Newf(ErrorCodeTimeout, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// Server returns a server failure carrying the HTTP status
func Server(status int, msg string) error {
	return &Error{code: ErrorCodeServer, msg: msg, status: status, runs: -1}
}

// QuotaExceeded returns a quota failure with the remaining run count
// Pass a negative runs when the count is unknown
func QuotaExceeded(runs int) error {
	shown := runs
	if shown < 0 {
		shown = 0
	}
	return &Error{
		code:   ErrorCodeQuotaExceeded,
		msg:    fmt.Sprintf("No available runs remaining. Available: %d", shown),
		status: 403,
		runs:   runs,
	}
}
