package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	l := NewLimiter(10, 5)
	if l.burst != 5 {
		t.Errorf("expected burst 5, got %d", l.burst)
	}

	l2 := NewLimiter(10, -1)
	if l2.burst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.burst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	l := NewLimiter(100, 1)
	ctx := context.Background()

	if err := l.Wait(ctx, "https://en.wikipedia.org/w/api.php"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := l.Wait(ctx, "https://de.wikipedia.org/w/api.php"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if len(l.buckets) != 2 {
		t.Errorf("expected one bucket per host, got %d", len(l.buckets))
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	l := NewLimiter(10, 1)
	ctx := context.Background()
	endpoint := "https://en.wikipedia.org/w/api.php"

	if err := l.Wait(ctx, endpoint); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	start := time.Now()
	if err := l.Wait(ctx, endpoint); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	if d := time.Since(start); d < 50*time.Millisecond {
		t.Errorf("expected second request to be delayed ~100ms, got %v", d)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(0, 1)
	ctx := context.Background()

	start := time.Now()
	for range 50 {
		if err := l.Wait(ctx, "https://example.com"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Errorf("expected unlimited waits to be immediate, took %v", d)
	}
}

func TestLimiter_ContextCancel(t *testing.T) {
	l := NewLimiter(0.1, 1)
	endpoint := "https://example.com"
	_ = l.Wait(context.Background(), endpoint)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, endpoint); err == nil {
		t.Error("expected error waiting past the deadline")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	l := NewLimiter(0.1, 1)
	l.SetHostRate("fast.example", 1000, 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for range 5 {
		if err := l.Wait(ctx, "https://fast.example/x"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
}
