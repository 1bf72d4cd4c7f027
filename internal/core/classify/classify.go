// Package classify maps a raw service response to success or exactly one
// typed failure. It is pure: no I/O, no logging
package classify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	perr "mimaas/internal/platform/errors"
)

// quotaPhrase marks a 403 as an exhausted plan rather than an auth problem
const quotaPhrase = "no available runs"

// errorBody is the subset of a JSON error document we read
type errorBody struct {
	Message       *string `json:"message"`
	AvailableRuns *int    `json:"available_runs"`
}

// Classify returns nil when status < 400, otherwise the typed failure for status and body
func Classify(status int, body []byte) error {
	if status < http.StatusBadRequest {
		return nil
	}

	eb, _ := parse(body)
	msg := message(status, body, eb)

	switch {
	case status == http.StatusUnauthorized:
		return withStatus(perr.New(perr.ErrorCodeUnauthorized, msg), status)
	case status == http.StatusForbidden:
		if isQuota(msg, body) {
			runs := -1
			if eb != nil && eb.AvailableRuns != nil {
				runs = *eb.AvailableRuns
			}
			return perr.QuotaExceeded(runs)
		}
		return withStatus(perr.New(perr.ErrorCodeUnauthorized, msg), status)
	case status == http.StatusNotFound:
		return withStatus(perr.New(perr.ErrorCodeNotFound, msg), status)
	case status == http.StatusBadRequest:
		return withStatus(perr.New(perr.ErrorCodeValidation, msg), status)
	case status >= http.StatusInternalServerError:
		return perr.Server(status, fmt.Sprintf("Server error (%d): %s", status, msg))
	default:
		return perr.Server(status, fmt.Sprintf("HTTP %d: %s", status, msg))
	}
}

// Message extracts the human message: JSON "message", else the raw body, else "HTTP {status}"
func Message(status int, body []byte) string {
	eb, _ := parse(body)
	return message(status, body, eb)
}

func message(status int, body []byte, eb *errorBody) string {
	if eb != nil && eb.Message != nil && strings.TrimSpace(*eb.Message) != "" {
		return *eb.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

// parse decodes a JSON object body; any other shape yields nil
func parse(body []byte) (*errorBody, bool) {
	if len(body) == 0 {
		return nil, false
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return nil, false
	}
	return &eb, true
}

func isQuota(msg string, body []byte) bool {
	return strings.Contains(strings.ToLower(msg), quotaPhrase) ||
		strings.Contains(strings.ToLower(string(body)), quotaPhrase)
}

func withStatus(err error, status int) error { return perr.WithStatus(err, status) }
