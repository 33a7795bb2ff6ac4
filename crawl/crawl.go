// Package crawl provides politeness-aware breadth-first web crawling.
// It coordinates the frontier, robots policy, per-origin rate limiting,
// retrying fetches, and link discovery under page and depth budgets.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/corpus"
	"golang.org/x/sync/errgroup"
)

// Config holds crawler settings for one run.
type Config struct {
	// MaxPages bounds the number of successfully fetched pages.
	MaxPages int

	// MaxDepth bounds link-following; seeds are depth 0.
	MaxDepth int

	// Concurrency is the number of parallel fetch workers.
	Concurrency int

	// PerDomainDelay is the minimum spacing of requests to one origin.
	PerDomainDelay time.Duration

	// RespectRobots enables robots.txt checking.
	RespectRobots bool

	// AllowedDomains restricts link-following. Empty means the hosts of
	// the seed URLs.
	AllowedDomains []string

	// ExcludedPatterns are case-insensitive URL regexes to skip.
	// Nil means DefaultExcludedPatterns.
	ExcludedPatterns []string

	// RetryDelays overrides the waits between fetch attempts.
	// Nil means DefaultRetryDelays (2s, 4s).
	RetryDelays []time.Duration

	// ExpectedURLs sizes the frontier's deduplication filter.
	ExpectedURLs uint
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	if c.MaxPages < 1 {
		return corpus.Errorf(corpus.EINVALID, "max pages must be at least 1")
	}
	if c.MaxDepth < 0 {
		return corpus.Errorf(corpus.EINVALID, "max depth must not be negative")
	}
	return nil
}

// Stats reports counters accumulated during one crawl run.
type Stats struct {
	Crawled       int
	Failed        int
	SkippedRobots int
	Discovered    int
}

// PageFunc receives pages as they are fetched. Calls are serialized;
// emission order within a depth level is first-to-finish.
type PageFunc func(page *corpus.Page)

// frontierExpectedURLs is the default Bloom filter sizing.
const frontierExpectedURLs = 100000

// frontierFalsePositiveRate is the acceptable false positive rate for
// URL deduplication. A false positive drops a crawlable URL.
const frontierFalsePositiveRate = 0.01

// Crawler performs one breadth-first crawl. Not restartable: create a new
// Crawler per run.
type Crawler struct {
	Fetcher corpus.Fetcher
	Robots  corpus.RobotsPolicy
	Limiter corpus.DomainLimiter
	Links   corpus.LinkExtractor
	Config  Config
	Logger  *slog.Logger

	frontier   *Frontier
	exclusions []*regexp.Regexp
	allowed    []string

	mu      sync.Mutex
	emitMu  sync.Mutex
	crawled int
	failed  int
	skipped int
}

// Crawl runs a breadth-first traversal from the seed URLs, invoking emit
// for every fetched HTML page until the frontier is exhausted or MaxPages
// is reached. Individual page failures are counted, never returned; the
// error reports configuration problems or context cancellation only.
func (c *Crawler) Crawl(ctx context.Context, seeds []string, emit PageFunc) (Stats, error) {
	if err := c.Config.Validate(); err != nil {
		return Stats{}, err
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	patterns := c.Config.ExcludedPatterns
	if patterns == nil {
		patterns = DefaultExcludedPatterns()
	}
	exclusions, err := CompileExclusions(patterns)
	if err != nil {
		return Stats{}, err
	}
	c.exclusions = exclusions

	expected := c.Config.ExpectedURLs
	if expected == 0 {
		expected = frontierExpectedURLs
	}
	c.frontier = NewFrontier(expected, frontierFalsePositiveRate)

	// Default scope: the hosts of the seed URLs.
	c.allowed = c.Config.AllowedDomains
	seeded := 0
	for _, seed := range seeds {
		norm, err := NormalizeURL(seed)
		if err != nil {
			logger.Warn("skipping invalid seed", "url", seed, "error", corpus.ErrorMessage(err))
			continue
		}
		if len(c.Config.AllowedDomains) == 0 {
			c.allowed = appendUnique(c.allowed, Host(norm))
		}
		if c.frontier.Push(corpus.Task{URL: norm, Depth: 0}) {
			seeded++
		}
	}
	if seeded == 0 {
		return Stats{}, corpus.Errorf(corpus.EINVALID, "no valid seed URLs")
	}

	concurrency := c.Config.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var inFlight atomic.Int64
	for {
		if gctx.Err() != nil {
			break
		}
		if c.budgetReached() {
			break
		}

		task, ok := c.frontier.Pop()
		if !ok {
			if inFlight.Load() == 0 {
				break
			}
			// In-flight workers may still refill the frontier.
			time.Sleep(5 * time.Millisecond)
			continue
		}

		inFlight.Add(1)
		g.Go(func() error {
			defer inFlight.Add(-1)
			c.process(gctx, task, emit, logger)
			return nil
		})
	}
	_ = g.Wait()

	stats := c.Stats()
	logger.Info("crawl complete",
		"crawled", stats.Crawled,
		"failed", stats.Failed,
		"skipped_robots", stats.SkippedRobots,
		"discovered", stats.Discovered,
	)

	return stats, ctx.Err()
}

// Stats returns the counters accumulated so far.
func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Crawled:       c.crawled,
		Failed:        c.failed,
		SkippedRobots: c.skipped,
		Discovered:    seenCount(c.frontier),
	}
}

func seenCount(f *Frontier) int {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return int(f.seen.ApproximatedSize())
}

func (c *Crawler) budgetReached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crawled >= c.Config.MaxPages
}

// process handles one frontier task: policy checks, throttled fetch with
// retry, emission, and link discovery. Failures never propagate; the
// worker always returns control to the pool.
func (c *Crawler) process(ctx context.Context, task corpus.Task, emit PageFunc, logger *slog.Logger) {
	// Cooperative cancellation check at task start.
	if ctx.Err() != nil {
		return
	}
	if c.budgetReached() {
		return
	}

	if c.Config.RespectRobots && c.Robots != nil {
		if !c.Robots.Allowed(ctx, task.URL) {
			c.mu.Lock()
			c.skipped++
			c.mu.Unlock()
			logger.Debug("blocked by robots.txt", "url", task.URL)
			return
		}
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx, Origin(task.URL)); err != nil {
			return
		}
	}

	delays := c.Config.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	start := time.Now()
	resp, err := FetchWithRetry(ctx, c.Fetcher, task.URL, delays, func(format string, args ...any) {
		logger.Debug("fetch retry", "detail", fmt.Sprintf(format, args...))
	})
	if err != nil {
		c.mu.Lock()
		c.failed++
		c.mu.Unlock()
		logger.Warn("failed to crawl", "url", task.URL, "error", err)
		return
	}
	latency := time.Since(start)

	if !isHTML(resp.ContentType) {
		logger.Debug("skipping non-HTML", "url", task.URL, "content_type", resp.ContentType)
		return
	}

	page := &corpus.Page{
		URL:        resp.FinalURL,
		StatusCode: resp.StatusCode,
		HTML:       resp.Body,
		Headers:    resp.Headers,
		Depth:      task.Depth,
		ParentURL:  task.Parent,
		FetchedAt:  start.UTC(),
		Latency:    latency,
	}

	// Admission is decided under the counter lock so the page budget is a
	// hard cap even with concurrent workers.
	c.mu.Lock()
	if c.crawled >= c.Config.MaxPages {
		c.mu.Unlock()
		return
	}
	c.crawled++
	n := c.crawled
	c.mu.Unlock()

	if emit != nil {
		c.emitMu.Lock()
		emit(page)
		c.emitMu.Unlock()
	}

	logger.Info("crawled",
		"url", task.URL,
		"status", resp.StatusCode,
		"latency", latency,
		"count", n,
		"max", c.Config.MaxPages,
	)

	if task.Depth < c.Config.MaxDepth && c.Links != nil {
		c.discover(resp.Body, page.URL, task)
	}
}

// discover extracts links from a fetched page and enqueues unseen,
// in-scope ones at depth+1.
func (c *Crawler) discover(html, baseURL string, task corpus.Task) {
	links, err := c.Links.ExtractLinks(html, baseURL)
	if err != nil {
		return
	}
	for _, link := range links {
		norm, err := NormalizeURL(link)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(norm, "http://") && !strings.HasPrefix(norm, "https://") {
			continue
		}
		if !InDomainScope(norm, c.allowed) {
			continue
		}
		if matchesAny(norm, c.exclusions) {
			continue
		}
		c.frontier.Push(corpus.Task{URL: norm, Depth: task.Depth + 1, Parent: task.URL})
	}
}

// isHTML reports whether a content type belongs to the HTML family.
func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
