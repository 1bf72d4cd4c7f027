package mimaas

import perr "mimaas/internal/platform/errors"

// ErrorCode classifies every failure the client returns
type ErrorCode = perr.ErrorCode

// Error codes
const (
	ErrUnknown       = perr.ErrorCodeUnknown
	ErrNetwork       = perr.ErrorCodeNetwork
	ErrUnauthorized  = perr.ErrorCodeUnauthorized
	ErrQuotaExceeded = perr.ErrorCodeQuotaExceeded
	ErrValidation    = perr.ErrorCodeValidation
	ErrNotFound      = perr.ErrorCodeNotFound
	ErrServer        = perr.ErrorCodeServer
	ErrProcessing    = perr.ErrorCodeProcessing
	ErrConfig        = perr.ErrorCodeConfig
	ErrTimeout       = perr.ErrorCodeTimeout
	ErrJSON          = perr.ErrorCodeJSON
)

// CodeOf returns the class of err; ErrUnknown for foreign errors
func CodeOf(err error) ErrorCode { return perr.CodeOf(err) }

// StatusOf returns the HTTP status behind err, 0 when there was none
func StatusOf(err error) int { return perr.StatusOf(err) }

// AvailableRuns returns the run count carried by a quota error
func AvailableRuns(err error) (int, bool) { return perr.AvailableRuns(err) }

func IsNetwork(err error) bool       { return perr.IsCode(err, ErrNetwork) }
func IsUnauthorized(err error) bool  { return perr.IsCode(err, ErrUnauthorized) }
func IsQuotaExceeded(err error) bool { return perr.IsCode(err, ErrQuotaExceeded) }
func IsValidation(err error) bool    { return perr.IsCode(err, ErrValidation) }
func IsNotFound(err error) bool      { return perr.IsCode(err, ErrNotFound) }
func IsServer(err error) bool        { return perr.IsCode(err, ErrServer) }
func IsProcessing(err error) bool    { return perr.IsCode(err, ErrProcessing) }
func IsConfig(err error) bool        { return perr.IsCode(err, ErrConfig) }
func IsTimeout(err error) bool       { return perr.IsCode(err, ErrTimeout) }
