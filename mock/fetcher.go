// Package mock provides function-field mock implementations of corpus
// interfaces for testing.
package mock

import (
	"context"

	"github.com/fwojciec/corpus"
)

var _ corpus.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of corpus.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*corpus.FetchResponse, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*corpus.FetchResponse, error) {
	return f.FetchFn(ctx, url)
}

var _ corpus.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of corpus.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, baseURL string) ([]string, error)
}

func (l *LinkExtractor) ExtractLinks(html, baseURL string) ([]string, error) {
	return l.ExtractLinksFn(html, baseURL)
}

var _ corpus.SeedSource = (*SeedSource)(nil)

// SeedSource is a mock implementation of corpus.SeedSource.
type SeedSource struct {
	DiscoverFn func(ctx context.Context, siteURL string) ([]string, error)
}

func (s *SeedSource) Discover(ctx context.Context, siteURL string) ([]string, error) {
	return s.DiscoverFn(ctx, siteURL)
}
