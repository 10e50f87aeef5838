// Package ratelimit guards provider calls with a per-identity token bucket.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Default limits applied to provider calls: 100 requests per identity per
// 60-second window.
const (
	DefaultCapacity = 100
	DefaultWindow   = 60 * time.Second
)

// ErrRateLimited indicates the identity has exhausted its bucket for the
// current window.
type ErrRateLimited struct {
	Identity   string
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Identity, e.RetryAfter.Round(time.Second))
}

// bucket tracks the remaining tokens for one identity within the current
// window. Each bucket has its own mutex so identities never contend.
type bucket struct {
	mu          sync.Mutex
	remaining   int
	windowStart time.Time
	lastAccess  time.Time
}

// take atomically checks and consumes one token. The window resets capacity
// when it has fully elapsed since bucket creation or last reset.
func (b *bucket) take(now time.Time, capacity int, window time.Duration) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.windowStart) >= window {
		b.windowStart = now
		b.remaining = capacity
	}
	b.lastAccess = now

	if b.remaining <= 0 {
		return false, b.windowStart.Add(window).Sub(now)
	}
	b.remaining--
	return true, 0
}

// Limiter manages one token bucket per caller identity.
type Limiter struct {
	capacity int
	window   time.Duration

	mu      sync.RWMutex
	buckets map[string]*bucket

	now func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter creates a limiter with the given capacity per window.
// Non-positive arguments fall back to the defaults.
func NewLimiter(capacity int, window time.Duration) *Limiter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		capacity: capacity,
		window:   window,
		buckets:  make(map[string]*bucket),
		now:      time.Now,
	}
}

// StartCleanup begins periodic eviction of buckets idle for more than an
// hour, bounding memory across many one-off identities.
func (l *Limiter) StartCleanup(interval time.Duration) {
	if l.cleanupTicker != nil {
		return
	}
	l.cleanupTicker = time.NewTicker(interval)
	l.cleanupStop = make(chan struct{})
	go func() {
		for {
			select {
			case <-l.cleanupTicker.C:
				l.evictIdle()
			case <-l.cleanupStop:
				return
			}
		}
	}()
}

// TryConsume atomically consumes one token for the identity. Check and
// decrement happen under the bucket's lock, so two concurrent callers can
// never both succeed past capacity.
func (l *Limiter) TryConsume(identity string) error {
	b := l.getBucket(identity)
	ok, retryAfter := b.take(l.now(), l.capacity, l.window)
	if !ok {
		return &ErrRateLimited{Identity: identity, RetryAfter: retryAfter}
	}
	return nil
}

// Remaining reports the tokens left for an identity without consuming one.
func (l *Limiter) Remaining(identity string) int {
	b := l.getBucket(identity)
	b.mu.Lock()
	defer b.mu.Unlock()
	if l.now().Sub(b.windowStart) >= l.window {
		return l.capacity
	}
	return b.remaining
}

// getBucket gets or creates the bucket for an identity.
func (l *Limiter) getBucket(identity string) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[identity]
	l.mu.RUnlock()
	if exists {
		return b
	}

	now := l.now()
	b = &bucket{remaining: l.capacity, windowStart: now, lastAccess: now}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Double-check after acquiring write lock
	if existing, exists := l.buckets[identity]; exists {
		return existing
	}
	l.buckets[identity] = b
	return b
}

// evictIdle removes buckets that have not been touched in over an hour.
func (l *Limiter) evictIdle() {
	cutoff := l.now().Add(-1 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()
	for identity, b := range l.buckets {
		b.mu.Lock()
		idle := b.lastAccess.Before(cutoff)
		b.mu.Unlock()
		if idle {
			delete(l.buckets, identity)
		}
	}
}

// Stop halts the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
