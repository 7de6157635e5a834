// Package worker runs per-claim work on a bounded pool of goroutines.
package worker

import (
	"context"
	"sync"
)

// Func processes one input
type Func[T, R any] func(ctx context.Context, in T) (R, error)

// Result is the outcome of one input, tagged with its position
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Pool runs a Func over a slice of inputs with a fixed number of workers
type Pool[T, R any] struct {
	workers int
	fn      Func[T, R]
}

// NewPool creates a pool; workers <= 0 means one worker
func NewPool[T, R any](workers int, fn Func[T, R]) *Pool[T, R] {
	if workers <= 0 {
		workers = 1
	}
	return &Pool[T, R]{workers: workers, fn: fn}
}

// Workers returns the pool size
func (p *Pool[T, R]) Workers() int {
	return p.workers
}

// Stream feeds inputs to the workers and returns a channel of results in
// completion order. The channel is closed once every worker has exited;
// cancelling ctx stops the feed and lets in-flight jobs observe ctx.Done.
func (p *Pool[T, R]) Stream(ctx context.Context, inputs []T) <-chan Result[R] {
	jobs := make(chan int, p.workers*2)
	results := make(chan Result[R], p.workers*2)

	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				v, err := p.fn(ctx, inputs[i])
				select {
				case results <- Result[R]{Index: i, Value: v, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range inputs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
