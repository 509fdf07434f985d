package plagiarism

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	count *atomic.Int64
	done  chan struct{}
	err   error
}

func (j *countingJob) Execute(_ context.Context) error {
	j.count.Add(1)
	j.done <- struct{}{}
	return j.err
}

func TestWorkerPoolRunsJobs(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3)
	defer pool.Close()

	const jobs = 20
	var count atomic.Int64
	done := make(chan struct{}, jobs)
	for i := 0; i < jobs; i++ {
		var err error
		if i%5 == 0 {
			err = errors.New("job failed")
		}
		require.NoError(t, pool.Submit(context.Background(), &countingJob{count: &count, done: done, err: err}))
	}

	for i := 0; i < jobs; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d of %d jobs ran", i, jobs)
		}
	}
	assert.Equal(t, int64(jobs), count.Load())
}

func TestWorkerPoolSize(t *testing.T) {
	tests := map[string]struct {
		size int
		want int
	}{
		"explicit": {size: 4, want: 4},
		"zero":     {size: 0, want: DefaultPoolSize()},
		"negative": {size: -1, want: DefaultPoolSize()},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			pool := NewWorkerPool(context.Background(), tc.size)
			defer pool.Close()
			assert.Equal(t, tc.want, pool.Size())
		})
	}
	assert.GreaterOrEqual(t, DefaultPoolSize(), 1)
}

func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	pool.Close()
	pool.Close()

	var count atomic.Int64
	err := pool.Submit(context.Background(), &countingJob{count: &count, done: make(chan struct{}, 1)})
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-pool.Done():
	default:
		t.Fatal("pool should be done after Close")
	}
}

func TestWorkerPoolSubmitTimesOutWhenFull(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)
	defer pool.Close()

	block := make(chan struct{})
	defer close(block)

	// One job occupies the worker and two fill the queue, so Submit must
	// eventually wait until its context expires.
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		err = pool.Submit(ctx, blockingJob(block))
		cancel()
	}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockingJob chan struct{}

func (j blockingJob) Execute(ctx context.Context) error {
	select {
	case <-j:
	case <-ctx.Done():
	}
	return nil
}
