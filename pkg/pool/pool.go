package pool

import (
	"context"
	"fmt"
	"sync"
)

// Task processes a single item.
type Task[T any] func(ctx context.Context, item T) error

// Failure pairs an item with the error its task returned.
type Failure[T any] struct {
	Item T
	Err  error
}

func (f Failure[T]) Error() string { return fmt.Sprintf("%v: %v", f.Item, f.Err) }
func (f Failure[T]) Unwrap() error { return f.Err }

// Run processes items with up to workers goroutines and returns the failures, in no
// particular order. Workers are clamped to [1, len(items)]. Once ctx is done no new item is
// started; items never started are not reported.
func Run[T any](ctx context.Context, items []T, workers int, task Task[T]) []Failure[T] {
	if len(items) == 0 {
		return nil
	}
	workers = max(1, min(workers, len(items)))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []Failure[T]
	)
	queue := make(chan T)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				if ctx.Err() != nil {
					continue
				}
				if err := task(ctx, item); err != nil {
					mu.Lock()
					failures = append(failures, Failure[T]{Item: item, Err: err})
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case queue <- item:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	return failures
}
