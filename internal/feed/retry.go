package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// RetryPolicy holds the parameters of the fetch retry loop.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget.
	MaxAttempts int

	// BaseDelay is multiplied by the failed attempt number, so waits grow
	// linearly: base, 2*base, 3*base, ...
	BaseDelay time.Duration
}

// DefaultRetryPolicy matches the feed host's tolerance: three attempts two
// seconds (then four, then six) apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// FetchWithRetry runs Fetch up to the attempt budget, waiting
// BaseDelay*attempt between failures. Context cancellation is honored
// during the backoff wait. After the final failure the returned error wraps
// the last underlying cause.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string, policy RetryPolicy) ([]byte, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		data, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt < policy.MaxAttempts {
			delay := policy.BaseDelay * time.Duration(attempt)
			log.Warn("fetch attempt failed, retrying",
				"attempt", attempt, "of", policy.MaxAttempts, "delay", delay, "err", err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("fetching feed failed after %d attempts: %w", policy.MaxAttempts, lastErr)
}
