package corpus

import "context"

// Frontier manages a crawl queue with deduplication. A URL pushed once is
// never accepted again for the lifetime of the frontier.
type Frontier interface {
	// Push adds a task to the frontier.
	// Returns false if the URL has already been seen.
	Push(task Task) bool

	// Pop returns the next task in breadth-first order.
	// Returns false if the frontier is empty.
	Pop() (Task, bool)

	// Len returns the number of tasks in the queue.
	Len() int

	// Seen returns true if the URL has been queued at some point.
	Seen(url string) bool
}

// DomainLimiter provides per-origin rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the origin.
	// Unrelated origins never wait on each other.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, origin string) error
}

// RobotsPolicy answers robots.txt allow/deny questions per URL.
type RobotsPolicy interface {
	// Allowed reports whether the URL may be fetched. Implementations
	// treat missing or unreadable robots.txt as "allow everything".
	Allowed(ctx context.Context, url string) bool
}
