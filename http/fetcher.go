// Package http provides HTTP-based implementations of corpus.Fetcher
// and corpus.SeedSource for static sites that don't require JavaScript
// rendering.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/corpus"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent identifies the crawler in request headers.
const DefaultUserAgent = "corpus-builder/1.0"

// maxBodyBytes caps response bodies to avoid unbounded reads on
// misbehaving servers.
const maxBodyBytes = 10 << 20 // 10 MiB

// Ensure Fetcher implements corpus.Fetcher at compile time.
var _ corpus.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages over HTTP. It does not execute JavaScript and
// is suitable for static sites only.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	headers   map[string]string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets additional headers sent with each request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithClient sets a custom HTTP client. The client's own timeout is used
// as-is; WithTimeout has no effect when a client is provided.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// Fetch retrieves the page at url. Redirects are followed; FinalURL
// reflects the URL after redirects. Status codes >= 400 are returned as
// errors so the caller can decide whether to retry.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*corpus.FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, corpus.Errorf(corpus.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "reading body of %s: %v", url, err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &corpus.FetchResponse{
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		Body:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		Headers:     headers,
	}, nil
}

// Close releases resources. For the HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
