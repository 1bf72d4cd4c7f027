package classify

import (
	"testing"

	perr "mimaas/internal/platform/errors"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   perr.ErrorCode
		msg    string
	}{
		{"unauthorized json", 401, `{"message":"Invalid token"}`, perr.ErrorCodeUnauthorized, "Invalid token"},
		{"forbidden plain", 403, `Forbidden`, perr.ErrorCodeUnauthorized, "Forbidden"},
		{"quota", 403, `{"message":"No available runs","available_runs":0}`, perr.ErrorCodeQuotaExceeded, "No available runs remaining. Available: 0"},
		{"quota mixed case text", 403, `you have NO AVAILABLE RUNS left`, perr.ErrorCodeQuotaExceeded, "No available runs remaining. Available: 0"},
		{"not found empty", 404, ``, perr.ErrorCodeNotFound, "HTTP 404"},
		{"bad request", 400, `{"message":"Invalid board"}`, perr.ErrorCodeValidation, "Invalid board"},
		{"server", 500, `{"message":"boom"}`, perr.ErrorCodeServer, "Server error (500): boom"},
		{"gateway text", 502, `Bad Gateway`, perr.ErrorCodeServer, "Server error (502): Bad Gateway"},
		{"other 4xx", 409, `{"message":"conflict"}`, perr.ErrorCodeServer, "HTTP 409: conflict"},
		{"other 4xx empty", 418, ``, perr.ErrorCodeServer, "HTTP 418: HTTP 418"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Classify(c.status, []byte(c.body))
			if err == nil {
				t.Fatalf("Classify(%d) = nil", c.status)
			}
			if perr.CodeOf(err) != c.code {
				t.Fatalf("code = %v, want %v", perr.CodeOf(err), c.code)
			}
			if err.Error() != c.msg {
				t.Fatalf("message = %q, want %q", err.Error(), c.msg)
			}
			if perr.StatusOf(err) != c.status && c.code != perr.ErrorCodeQuotaExceeded {
				t.Fatalf("status = %d, want %d", perr.StatusOf(err), c.status)
			}
		})
	}
}

func TestClassifySuccess(t *testing.T) {
	for _, s := range []int{200, 201, 204, 302} {
		if err := Classify(s, []byte(`{"message":"x"}`)); err != nil {
			t.Fatalf("Classify(%d) = %v", s, err)
		}
	}
}

func TestQuotaCarriesRuns(t *testing.T) {
	err := Classify(403, []byte(`{"message":"No available runs remaining","available_runs":2}`))
	runs, ok := perr.AvailableRuns(err)
	if !ok || runs != 2 {
		t.Fatalf("AvailableRuns = %d, %v", runs, ok)
	}
}

func TestMessageFallbacks(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"message":"hello"}`, "hello"},
		{`{"detail":"x"}`, `{"detail":"x"}`},
		{`{"message":""}`, `{"message":""}`},
		{`not json`, "not json"},
		{`[1,2]`, "[1,2]"},
		{"   ", "HTTP 500"},
		{"", "HTTP 500"},
	}
	for _, c := range cases {
		if got := Message(500, []byte(c.body)); got != c.want {
			t.Fatalf("Message(%q) = %q, want %q", c.body, got, c.want)
		}
	}
}
