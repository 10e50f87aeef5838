package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/profile-optimizer/internal/types"
)

// Eviction defaults. Sessions are evicted a fixed time after creation
// irrespective of state, bounding memory across abandoned clients.
const (
	DefaultTTL           = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// ErrDuplicateSession indicates a create attempt with an id already in use.
type ErrDuplicateSession struct {
	ID string
}

func (e *ErrDuplicateSession) Error() string {
	return fmt.Sprintf("session %s already exists", e.ID)
}

// ErrNotFound indicates a lookup for an unknown or already-evicted session.
type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("session %s not found", e.ID)
}

// Registry holds live sessions keyed by id.
type Registry struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session

	now func() time.Time

	sweepTicker *time.Ticker
	sweepStop   chan struct{}
}

// NewRegistry creates a registry. A non-positive ttl falls back to
// DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new pending session. Ids are never reused while the
// original session is still live.
func (r *Registry) Create(id string, req types.OptimizationRequest) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[id]; exists {
		return nil, &ErrDuplicateSession{ID: id}
	}
	s := newSession(id, req, r.now())
	r.sessions[id] = s
	return s, nil
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, exists := r.sessions[id]
	if !exists {
		return nil, &ErrNotFound{ID: id}
	}
	return s, nil
}

// StartSweep begins periodic eviction of expired sessions.
func (r *Registry) StartSweep(interval time.Duration) {
	if r.sweepTicker != nil {
		return
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	r.sweepTicker = time.NewTicker(interval)
	r.sweepStop = make(chan struct{})
	go func() {
		for {
			select {
			case <-r.sweepTicker.C:
				r.sweepExpired()
			case <-r.sweepStop:
				return
			}
		}
	}()
}

// sweepExpired drops sessions older than the TTL, counted from creation.
func (r *Registry) sweepExpired() {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Stop halts the sweep goroutine.
func (r *Registry) Stop() {
	if r.sweepTicker != nil {
		r.sweepTicker.Stop()
	}
	if r.sweepStop != nil {
		close(r.sweepStop)
	}
}
