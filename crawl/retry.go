package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/corpus"
)

// DefaultRetryDelays returns the backoff delays between fetch attempts:
// 2s then 4s, for 3 total attempts. Delays grow exponentially from a 2s
// floor and would cap at 30s if more attempts were configured.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{2 * time.Second, 4 * time.Second}
}

// LogFunc is the signature for a retry logging callback.
type LogFunc func(format string, args ...any)

// FetchWithRetry fetches a URL through f, retrying on error once per entry
// in delays (len(delays)+1 total attempts). A persistent failure returns
// the last error; the caller decides whether that abandons the task.
// The logger function, if provided, is called before each retry.
func FetchWithRetry(ctx context.Context, f corpus.Fetcher, url string, delays []time.Duration, logger LogFunc) (*corpus.FetchResponse, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := f.Fetch(ctx, url)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		if logger != nil {
			logger("retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}
