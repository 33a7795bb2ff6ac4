// Package slog provides logging decorators for corpus interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/corpus"
)

// Ensure LoggingFetcher implements corpus.Fetcher at compile time.
var _ corpus.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request debug logging.
type LoggingFetcher struct {
	next   corpus.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next corpus.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (*corpus.FetchResponse, error) {
	begin := time.Now()
	resp, err := f.next.Fetch(ctx, url)
	if err != nil {
		f.logger.Debug("fetch failed",
			"url", url,
			"duration", time.Since(begin),
			"error", err,
		)
		return nil, err
	}

	f.logger.Debug("fetched",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(resp.Body),
		"duration", time.Since(begin),
	)
	return resp, nil
}
