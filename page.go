package corpus

import (
	"context"
	"time"
)

// Task is a unit of work in the crawl frontier. Immutable once created.
type Task struct {
	URL    string
	Depth  int
	Parent string
}

// Page represents one successfully fetched HTML page. Ownership passes from
// the crawler to the extraction stage; the crawler does not retain pages.
type Page struct {
	URL        string
	StatusCode int
	HTML       string
	Headers    map[string]string
	Depth      int
	ParentURL  string
	FetchedAt  time.Time
	Latency    time.Duration
}

// FetchResponse holds the outcome of one HTTP fetch.
type FetchResponse struct {
	// FinalURL is the URL after redirects.
	FinalURL    string
	StatusCode  int
	Body        string
	ContentType string
	Headers     map[string]string
}

// Fetcher retrieves pages over HTTP.
type Fetcher interface {
	// Fetch retrieves the URL, following redirects. A non-success status
	// is returned as an error so callers can apply retry policy uniformly.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*FetchResponse, error)
}

// LinkExtractor extracts absolute outgoing links from HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns resolved absolute URLs.
	// Non-HTTP schemes (javascript:, mailto:, tel:) are skipped.
	ExtractLinks(html string, baseURL string) ([]string, error)
}

// SeedSource discovers additional seed URLs for a site, e.g. from sitemaps.
type SeedSource interface {
	Discover(ctx context.Context, siteURL string) ([]string, error)
}
