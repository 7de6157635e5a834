package worker

import (
	"context"
	"fmt"
)

// OrderedBatch runs a Func over a batch and returns results in input order,
// independent of completion order. The first failure cancels the rest of the
// batch.
type OrderedBatch[T, R any] struct {
	pool     *Pool[T, R]
	progress func(done, total int)
}

// NewOrderedBatch creates a batch runner with the given concurrency
func NewOrderedBatch[T, R any](workers int, fn Func[T, R]) *OrderedBatch[T, R] {
	return &OrderedBatch[T, R]{pool: NewPool(workers, fn)}
}

// OnProgress registers a callback invoked after each completed input. It is
// called from the collecting goroutine only.
func (b *OrderedBatch[T, R]) OnProgress(fn func(done, total int)) {
	b.progress = fn
}

// Run processes every input. On error the partial results are discarded and
// the error of the first failing input (by completion) is returned.
func (b *OrderedBatch[T, R]) Run(ctx context.Context, inputs []T) ([]R, error) {
	out := make([]R, len(inputs))
	if len(inputs) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var firstErr error
	done := 0
	for res := range b.pool.Stream(ctx, inputs) {
		if res.Err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("item %d: %w", res.Index, res.Err)
				cancel()
			}
			continue
		}
		out[res.Index] = res.Value
		done++
		if b.progress != nil {
			b.progress(done, len(inputs))
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if done != len(inputs) {
		return nil, fmt.Errorf("batch interrupted after %d of %d: %w", done, len(inputs), context.Cause(ctx))
	}
	return out, nil
}
