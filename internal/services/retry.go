package services

import (
	"context"
	"errors"
	"time"

	"github.com/lowtide/lowtide/internal/shared"
)

// RetryPolicy controls how provider clients back off and retry calls the
// provider throttled. Only [shared.ErrRateLimited] is retried; transient
// network failures surface to the caller so the pipeline can leave the
// affected track unprocessed for the next run.
type RetryPolicy struct {
	Backoff []time.Duration // one delay per retry; len is the retry budget
}

// DefaultRetryPolicy retries three times with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Backoff: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}}
}

// Do invokes fn, sleeping and re-invoking it per the backoff schedule while
// it returns a rate-limit error. The last error is returned when the budget
// is exhausted.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= len(p.Backoff); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff[attempt-1]):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrRateLimited) {
			return err
		}
		lastErr = err
	}

	return lastErr
}
