package exchange

import (
	"context"
	"io"
	"testing"

	"mimaas/internal/core/coretest"
	"mimaas/internal/core/domain"
	perr "mimaas/internal/platform/errors"
)

func TestJSONDecodes(t *testing.T) {
	tr := coretest.NewTransport(coretest.JSON(200, map[string]string{"api_token": "abc"}))
	var out struct {
		Token string `json:"api_token"`
	}
	if err := JSON(context.Background(), tr, domain.Call{Op: "login", Method: "POST", Path: "/login"}, &out); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if out.Token != "abc" {
		t.Fatalf("token = %q", out.Token)
	}
}

func TestJSONDecodeFailure(t *testing.T) {
	tr := coretest.NewTransport(coretest.Text(200, "<html>"))
	var out map[string]any
	err := JSON(context.Background(), tr, domain.Call{Op: "profile"}, &out)
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("err = %v, want json code", err)
	}
	if e, _ := perr.As(err); e.Op() != "profile" {
		t.Fatalf("op = %q", e.Op())
	}
}

func TestClassifiedFailureCarriesOp(t *testing.T) {
	tr := coretest.NewTransport(coretest.Text(404, ""))
	_, err := Bytes(context.Background(), tr, domain.Call{Op: "fetch"})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v", err)
	}
	if err.Error() != "HTTP 404" {
		t.Fatalf("message = %q", err.Error())
	}
	if e, _ := perr.As(err); e.Op() != "fetch" || e.Status() != 404 {
		t.Fatalf("op/status = %q/%d", e.Op(), e.Status())
	}
}

func TestTransportErrorPassesThrough(t *testing.T) {
	cause := perr.Networkf("dial refused")
	tr := coretest.NewTransport(coretest.Reply{Err: cause})
	err := Discard(context.Background(), tr, domain.Call{Op: "remove"})
	if !perr.IsCode(err, perr.ErrorCodeNetwork) {
		t.Fatalf("err = %v", err)
	}
	if err.Error() != "dial refused" {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestOpenLeavesBodyToCaller(t *testing.T) {
	tr := coretest.NewTransport(coretest.Text(200, "stream-bytes"))
	resp, err := Open(context.Background(), tr, domain.Call{Op: "download"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "stream-bytes" {
		t.Fatalf("body = %q", b)
	}
}
