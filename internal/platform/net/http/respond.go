// Package http provides helpers for writing JSON responses in the shape the
// MIMaaS API uses: bare documents on success, {"message": ...} on failure
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "mimaas/internal/platform/errors"
)

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg} with the given status
func Message(w stdhttp.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Status maps an error code to the HTTP status the API answers with
func Status(code perr.ErrorCode) int {
	switch code {
	case perr.ErrorCodeValidation, perr.ErrorCodeJSON:
		return stdhttp.StatusBadRequest
	case perr.ErrorCodeUnauthorized:
		return stdhttp.StatusUnauthorized
	case perr.ErrorCodeQuotaExceeded:
		return stdhttp.StatusForbidden
	case perr.ErrorCodeNotFound:
		return stdhttp.StatusNotFound
	default:
		return stdhttp.StatusInternalServerError
	}
}

// Error writes err as a message document; quota errors also carry available_runs
func Error(w stdhttp.ResponseWriter, err error) {
	e, ok := perr.As(err)
	if !ok {
		Message(w, stdhttp.StatusInternalServerError, "Internal server error")
		return
	}
	status := e.Status()
	if status == 0 {
		status = Status(e.Code())
	}
	if runs, ok := perr.AvailableRuns(err); ok {
		JSON(w, status, map[string]any{"message": "No available runs", "available_runs": runs})
		return
	}
	Message(w, status, e.Message())
}
