package http

import (
	"context"
	stdhttp "net/http"
	"testing"
	"time"
)

func TestServerRunStopsOnCancel(t *testing.T) {
	s := NewServer("127.0.0.1:0", stdhttp.NotFoundHandler())
	if s.Addr() != "127.0.0.1:0" {
		t.Fatalf("Addr = %q", s.Addr())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run after cancel = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestServerRunReportsListenError(t *testing.T) {
	s := NewServer("256.0.0.1:bad", stdhttp.NotFoundHandler())
	if err := s.Run(context.Background()); err == nil {
		t.Fatalf("expected listen error")
	}
}
