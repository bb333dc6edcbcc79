package pool_test

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/habedi/escola/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Run(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	var count atomic.Int64

	task := func(ctx context.Context, item int) error {
		count.Add(1)
		time.Sleep(5 * time.Millisecond)
		return nil
	}

	failures := pool.Run(context.Background(), items, 3, task)

	assert.Empty(t, failures)
	assert.Equal(t, int64(len(items)), count.Load())
}

func TestPool_ReportsFailingItems(t *testing.T) {
	boom := errors.New("download failed")
	task := func(ctx context.Context, item int) error {
		if item%2 == 0 {
			return boom
		}
		return nil
	}

	failures := pool.Run(context.Background(), []int{1, 2, 3, 4, 5, 6}, 2, task)
	require.Len(t, failures, 3)

	var items []int
	for _, f := range failures {
		items = append(items, f.Item)
		assert.ErrorIs(t, f, boom)
	}
	sort.Ints(items)
	assert.Equal(t, []int{2, 4, 6}, items)
}

func TestPool_EmptyItems(t *testing.T) {
	called := false
	failures := pool.Run(context.Background(), []string{}, 4, func(ctx context.Context, s string) error {
		called = true
		return nil
	})
	assert.Empty(t, failures)
	assert.False(t, called)
}

func TestPool_ClampsWorkerCount(t *testing.T) {
	for _, workers := range []int{-3, 0, 1, 50} {
		var count atomic.Int32
		failures := pool.Run(context.Background(), []int{1, 2, 3}, workers, func(ctx context.Context, i int) error {
			count.Add(1)
			return nil
		})
		assert.Empty(t, failures)
		assert.Equal(t, int32(3), count.Load(), "workers=%d", workers)
	}
}

func TestPool_CancelStopsNewWork(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}
	ctx, cancel := context.WithCancel(context.Background())
	var processed atomic.Int64

	task := func(ctx context.Context, item int) error {
		processed.Add(1)
		if item == 0 {
			cancel()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Millisecond):
		}
		return nil
	}

	pool.Run(ctx, items, 4, task)
	assert.Less(t, processed.Load(), int64(len(items)))
}

func TestFailure_Error(t *testing.T) {
	f := pool.Failure[string]{Item: "abc", Err: errors.New("boom")}
	assert.Equal(t, "abc: boom", f.Error())
}
