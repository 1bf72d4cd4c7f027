package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSystemSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := System{}.Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Sleep did not return promptly")
	}
}

func TestSystemSleepZero(t *testing.T) {
	if err := (System{}).Sleep(context.Background(), 0); err != nil {
		t.Fatalf("Sleep(0) = %v", err)
	}
}

func TestFakeAdvancesOnSleep(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	if err := f.Sleep(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	f.Advance(250 * time.Millisecond)

	if got := f.Now().Sub(start); got != 5250*time.Millisecond {
		t.Fatalf("elapsed = %v", got)
	}
	if s := f.Sleeps(); len(s) != 1 || s[0] != 5*time.Second {
		t.Fatalf("Sleeps = %v", s)
	}
}

func TestFakeSleepCancelled(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if !f.Now().Equal(time.Unix(0, 0)) {
		t.Fatalf("cancelled sleep must not advance time")
	}
}
