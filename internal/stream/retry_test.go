package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RishiKendai/verbatim/internal/preprocess"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeadLetter struct {
	mu    sync.Mutex
	added []*redis.XAddArgs
	err   error
}

func (f *fakeDeadLetter) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	f.added = append(f.added, a)
	return redis.NewStringResult(fmt.Sprintf("%d-0", len(f.added)), nil)
}

func newTestRetryHandler(dlq *fakeDeadLetter, maxRetries int) *RetryHandler {
	h := NewRetryHandler(dlq, "overlap:dlq", maxRetries)
	h.baseDelay = time.Millisecond
	h.maxDelay = 5 * time.Millisecond
	return h
}

// failing returns a function that fails the first n calls with err
func failing(n int, err error) (func() error, *int) {
	calls := 0
	return func() error {
		calls++
		if calls <= n {
			return err
		}
		return nil
	}, &calls
}

func TestRetryWithBackoff(t *testing.T) {
	transient := errors.New("mongo unavailable")
	permanent := fmt.Errorf("%w: 10 > 5 bytes", preprocess.ErrDocumentTooLarge)

	tests := map[string]struct {
		failures     int
		err          error
		maxRetries   int
		wantCalls    int
		wantErr      error
		deadLettered bool
	}{
		"first attempt succeeds": {
			failures:   0,
			maxRetries: 3,
			wantCalls:  1,
		},
		"succeeds after retries": {
			failures:   2,
			err:        transient,
			maxRetries: 3,
			wantCalls:  3,
		},
		"retries exhausted": {
			failures:     10,
			err:          transient,
			maxRetries:   2,
			wantCalls:    3,
			wantErr:      transient,
			deadLettered: true,
		},
		"no retries configured": {
			failures:     1,
			err:          transient,
			maxRetries:   0,
			wantCalls:    1,
			wantErr:      transient,
			deadLettered: true,
		},
		"permanent error is not retried": {
			failures:     10,
			err:          permanent,
			maxRetries:   3,
			wantCalls:    1,
			wantErr:      preprocess.ErrDocumentTooLarge,
			deadLettered: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dlq := &fakeDeadLetter{}
			h := newTestRetryHandler(dlq, tc.maxRetries)
			fn, calls := failing(tc.failures, tc.err)

			err := h.RetryWithBackoff(context.Background(), fn, "7-0", map[string]interface{}{"documentId": "d1"})

			assert.Equal(t, tc.wantCalls, *calls)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}

			if !tc.deadLettered {
				assert.Empty(t, dlq.added)
				return
			}
			require.Len(t, dlq.added, 1)
			entry := dlq.added[0]
			assert.Equal(t, "overlap:dlq", entry.Stream)

			values := entry.Values.(map[string]interface{})
			assert.Equal(t, "d1", values["documentId"])
			assert.Equal(t, "7-0", values["original_id"])
			assert.Equal(t, tc.err.Error(), values["error"])
			assert.NotEmpty(t, values["failed_at"])
		})
	}
}

func TestRetryWithBackoffDeadLetterFailure(t *testing.T) {
	dlq := &fakeDeadLetter{err: errors.New("redis down")}
	h := newTestRetryHandler(dlq, 0)
	cause := errors.New("write failed")

	err := h.RetryWithBackoff(context.Background(), func() error { return cause }, "8-0", nil)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dead-letter failed")
}

func TestRetryWithBackoffCancelled(t *testing.T) {
	dlq := &fakeDeadLetter{}
	h := newTestRetryHandler(dlq, 5)
	h.baseDelay = time.Hour
	h.maxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	fn := func() error {
		cancel()
		return errors.New("transient")
	}

	err := h.RetryWithBackoff(ctx, fn, "9-0", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dlq.added)
}

func TestBackoff(t *testing.T) {
	h := NewRetryHandler(&fakeDeadLetter{}, "dlq", 3)

	assert.Equal(t, 500*time.Millisecond, h.backoff(0))
	assert.Equal(t, time.Second, h.backoff(1))
	assert.Equal(t, 4*time.Second, h.backoff(3))
	assert.Equal(t, 10*time.Second, h.backoff(5))
	assert.Equal(t, 10*time.Second, h.backoff(80))
}
