package worker

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

func TestOrderedBatch_PreservesInputOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	delays := make([]time.Duration, 30)
	for i := range delays {
		delays[i] = time.Duration(rng.IntN(5)) * time.Millisecond
	}

	b := NewOrderedBatch(5, func(_ context.Context, i int) (int, error) {
		time.Sleep(delays[i])
		return i * 10, nil
	})

	inputs := make([]int, len(delays))
	for i := range inputs {
		inputs[i] = i
	}

	out, err := b.Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, v := range out {
		if v != i*10 {
			t.Fatalf("position %d: got %d, want %d", i, v, i*10)
		}
	}
}

func TestOrderedBatch_Empty(t *testing.T) {
	b := NewOrderedBatch(2, func(_ context.Context, s string) (string, error) { return s, nil })
	out, err := b.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}

func TestOrderedBatch_FirstErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	b := NewOrderedBatch(2, func(ctx context.Context, i int) (int, error) {
		if i == 1 {
			return 0, boom
		}
		select {
		case <-time.After(10 * time.Millisecond):
			return i, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	out, err := b.Run(context.Background(), []int{0, 1, 2, 3, 4, 5, 6, 7})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if out != nil {
		t.Errorf("expected no partial output, got %v", out)
	}
}

func TestOrderedBatch_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewOrderedBatch(1, func(ctx context.Context, i int) (int, error) {
		if i == 0 {
			cancel()
		}
		<-ctx.Done()
		return 0, ctx.Err()
	})

	if _, err := b.Run(ctx, []int{0, 1, 2}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestOrderedBatch_Progress(t *testing.T) {
	b := NewOrderedBatch(3, func(_ context.Context, i int) (int, error) { return i, nil })

	var calls, lastTotal int
	b.OnProgress(func(done, total int) {
		calls++
		lastTotal = total
	})

	if _, err := b.Run(context.Background(), []int{1, 2, 3, 4}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 4 || lastTotal != 4 {
		t.Errorf("expected 4 progress calls with total 4, got %d calls, total %d", calls, lastTotal)
	}
}
