package utils

import (
	"sync"
	"time"
)

// WorkerPool manages a pool of goroutines with rate limiting. The rate limit
// spaces out outbound storefront requests so a single analysis does not
// hammer the upstream.
type WorkerPool struct {
	maxWorkers  int
	rateLimitMs int
	semaphore   chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastRequest time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency and rate limit.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	return &WorkerPool{
		maxWorkers:  maxWorkers,
		rateLimitMs: rateLimitMs,
		semaphore:   make(chan struct{}, maxWorkers),
		lastRequest: time.Now(),
	}
}

// Submit enqueues a job for execution in the pool.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.enforceRateLimit()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) enforceRateLimit() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	minInterval := time.Duration(wp.rateLimitMs) * time.Millisecond
	elapsed := time.Since(wp.lastRequest)
	if elapsed < minInterval {
		time.Sleep(minInterval - elapsed)
	}
	wp.lastRequest = time.Now()
}

// RefSet is a thread-safe set for deduplicating app references (package ids
// or listing URLs) while collecting similar-app candidates.
type RefSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewRefSet creates an empty RefSet.
func NewRefSet() *RefSet {
	return &RefSet{seen: make(map[string]struct{})}
}

// Add returns true if the reference was newly added, false if already present.
func (s *RefSet) Add(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[ref]; exists {
		return false
	}
	s.seen[ref] = struct{}{}
	return true
}

// Contains returns true if the reference has already been seen.
func (s *RefSet) Contains(ref string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[ref]
	return exists
}

// Size returns the number of unique references tracked.
func (s *RefSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
