package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "mimaas/internal/platform/errors"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return m
}

func TestJSONAndMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, stdhttp.StatusCreated, map[string]int{"id": 4})
	if rr.Code != 201 || rr.Header().Get("Content-Type") != "application/json; charset=utf-8" {
		t.Fatalf("code=%d ct=%q", rr.Code, rr.Header().Get("Content-Type"))
	}

	rr = httptest.NewRecorder()
	Message(rr, stdhttp.StatusNotFound, "Board not found")
	if decode(t, rr)["message"] != "Board not found" {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{perr.Validationf("Invalid board"), 400, "Invalid board"},
		{perr.Unauthorizedf("Invalid token"), 401, "Invalid token"},
		{perr.NotFoundf("Request not found"), 404, "Request not found"},
		{perr.Server(503, "maintenance"), 503, "maintenance"},
		{perr.Internalf("boom"), 500, "boom"},
		{errors.New("foreign"), 500, "Internal server error"},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		Error(rr, c.err)
		if rr.Code != c.status {
			t.Fatalf("%v: status = %d, want %d", c.err, rr.Code, c.status)
		}
		if got := decode(t, rr)["message"]; got != c.msg {
			t.Fatalf("%v: message = %v", c.err, got)
		}
	}
}

func TestErrorQuotaCarriesRuns(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, perr.QuotaExceeded(0))
	m := decode(t, rr)
	if rr.Code != 403 || m["message"] != "No available runs" || m["available_runs"] != float64(0) {
		t.Fatalf("quota response = %d %v", rr.Code, m)
	}
}
