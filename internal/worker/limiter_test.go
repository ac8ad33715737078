package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_PerHostIndependent(t *testing.T) {
	l := NewLimiter(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Burst of one per host: two different hosts both pass immediately
	if err := l.Wait(ctx, "https://dice.fm/browse"); err != nil {
		t.Fatalf("First host: %v", err)
	}
	if err := l.Wait(ctx, "https://ra.co/events/1"); err != nil {
		t.Fatalf("Second host: %v", err)
	}
}

func TestLimiter_BlocksSameHost(t *testing.T) {
	l := NewLimiter(0.001, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "https://dice.fm/a"); err != nil {
		t.Fatalf("First request: %v", err)
	}
	// Second request on the same host exceeds the budget and times out
	if err := l.Wait(ctx, "https://dice.fm/b"); err == nil {
		t.Error("Expected context deadline on rate-limited host")
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	l := NewLimiter(1, 1)
	if err := l.Wait(context.Background(), "://bad"); err == nil {
		t.Error("Expected error for unparseable URL")
	}
}
