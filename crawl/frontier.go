package crawl

import (
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/corpus"
)

// Compile-time interface verification.
var _ corpus.Frontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO crawl queue with Bloom filter
// deduplication. Tasks come out in the order they went in, which keeps
// traversal breadth-first when callers enqueue depth d before depth d+1.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.BloomFilter
	queue []corpus.Task
}

// NewFrontier creates a Frontier sized for n expected URLs with the given
// false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewWithEstimates(n, fpRate),
	}
}

// Push adds a task to the frontier.
// Returns false if the URL has already been seen. URL fragments are
// stripped before deduplication - URLs differing only by fragment are
// considered duplicates.
func (f *Frontier) Push(task corpus.Task) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	url := task.URL
	if idx := strings.Index(url, "#"); idx != -1 {
		url = url[:idx]
	}

	if f.seen.TestString(url) {
		return false
	}
	f.seen.AddString(url)

	task.URL = url
	f.queue = append(f.queue, task)
	return true
}

// Pop returns the oldest queued task.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (corpus.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return corpus.Task{}, false
	}
	task := f.queue[0]
	f.queue = f.queue[1:]
	return task, true
}

// Len returns the number of tasks in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been queued at some point.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	url := rawURL
	if idx := strings.Index(url, "#"); idx != -1 {
		url = url[:idx]
	}
	return f.seen.TestString(url)
}
