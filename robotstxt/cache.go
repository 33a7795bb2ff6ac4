// Package robotstxt provides a per-origin robots.txt cache implementing
// corpus.RobotsPolicy on top of github.com/temoto/robotstxt.
package robotstxt

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/corpus"
	"github.com/temoto/robotstxt"
)

// DefaultFetchTimeout bounds the robots.txt fetch for an origin.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Cache implements corpus.RobotsPolicy at compile time.
var _ corpus.RobotsPolicy = (*Cache)(nil)

// Cache fetches and memoizes robots.txt rules per origin. A missing or
// unreadable robots.txt is cached as "allow everything" so crawling
// proceeds when robots metadata is unavailable.
type Cache struct {
	userAgent string
	client    *http.Client
	timeout   time.Duration

	mu      sync.Mutex
	origins map[string]*originEntry
}

// originEntry serializes the first robots.txt fetch for one origin.
// A nil data after fetch means "no restrictions".
type originEntry struct {
	once sync.Once
	data *robotstxt.RobotsData
}

// Option configures a Cache.
type Option func(*Cache)

// WithTimeout sets the robots.txt fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.timeout = d
	}
}

// WithClient sets the HTTP client used for robots.txt fetches.
func WithClient(client *http.Client) Option {
	return func(c *Cache) {
		c.client = client
	}
}

// NewCache creates a Cache that evaluates rules for the given user agent.
func NewCache(userAgent string, opts ...Option) *Cache {
	c := &Cache{
		userAgent: userAgent,
		timeout:   DefaultFetchTimeout,
		origins:   make(map[string]*originEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	return c
}

// Allowed reports whether the URL may be fetched under the origin's robots
// rules. The first call for an origin fetches its robots.txt; concurrent
// first calls for the same origin share one fetch. Subsequent calls are
// served from cache.
func (c *Cache) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	origin := u.Scheme + "://" + u.Host

	c.mu.Lock()
	entry, ok := c.origins[origin]
	if !ok {
		entry = &originEntry{}
		c.origins[origin] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.data = c.fetch(ctx, origin)
	})

	if entry.data == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return entry.data.TestAgent(path, c.userAgent)
}

// fetch retrieves and parses an origin's robots.txt. Any failure, non-200
// status, or parse error yields nil, meaning "no restrictions".
func (c *Cache) fetch(ctx context.Context, origin string) *robotstxt.RobotsData {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}
	return data
}
