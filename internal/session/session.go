// Package session tracks optimization sessions through their lifecycle and
// bounds their memory with TTL-based eviction.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/profile-optimizer/internal/types"
)

// Status is the lifecycle state of a session. Terminal states are absorbing.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ErrSessionBusy indicates a start attempt against a session that is not in
// the pending state. The in-flight pipeline, if any, is left untouched.
type ErrSessionBusy struct {
	ID string
}

func (e *ErrSessionBusy) Error() string {
	return fmt.Sprintf("session %s already started", e.ID)
}

// Session is one optimization run. All state transitions go through its
// methods and hold the internal lock, so concurrent starts serialize.
type Session struct {
	ID        string
	Request   types.OptimizationRequest
	CreatedAt time.Time

	mu           sync.Mutex
	status       Status
	progress     int
	currentStep  string
	analysis     *types.AnalysisResult
	optimization *types.OptimizationResult
	failure      error
}

func newSession(id string, req types.OptimizationRequest, createdAt time.Time) *Session {
	return &Session{
		ID:        id,
		Request:   req,
		CreatedAt: createdAt,
		status:    StatusPending,
	}
}

// MarkRunning transitions pending to running. Any other current state fails
// with ErrSessionBusy and changes nothing.
func (s *Session) MarkRunning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPending {
		return &ErrSessionBusy{ID: s.ID}
	}
	s.status = StatusRunning
	return nil
}

// RecordEvent applies a progress event. Progress never decreases within a
// session, and events against a terminal session are dropped.
func (s *Session) RecordEvent(ev types.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	if ev.Progress < s.progress {
		return
	}
	s.progress = ev.Progress
	s.currentStep = ev.CurrentStep
}

// CompleteAnalysis marks the session completed with an analysis result.
// No-op if the session is already terminal.
func (s *Session) CompleteAnalysis(result types.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	s.status = StatusCompleted
	s.progress = 100
	s.analysis = &result
}

// CompleteOptimization marks the session completed with an optimization
// result. No-op if the session is already terminal.
func (s *Session) CompleteOptimization(result types.OptimizationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	s.status = StatusCompleted
	s.progress = 100
	s.optimization = &result
}

// Fail marks the session failed. No-op if the session is already terminal.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	s.status = StatusFailed
	s.failure = err
}

// Cancel marks the session cancelled. No-op if the session is already
// terminal, so a late failure or result never overwrites cancellation and
// vice versa.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return
	}
	s.status = StatusCancelled
}

// Snapshot is a consistent read of session state for status polling.
type Snapshot struct {
	SessionID    string                    `json:"sessionId"`
	Status       Status                    `json:"status"`
	Progress     int                       `json:"progress"`
	CurrentStep  string                    `json:"currentStep,omitempty"`
	Analysis     *types.AnalysisResult     `json:"analysis,omitempty"`
	Optimization *types.OptimizationResult `json:"optimization,omitempty"`
	Error        string                    `json:"error,omitempty"`
	Timestamp    time.Time                 `json:"timestamp"`
}

// Snapshot returns the current state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		SessionID:    s.ID,
		Status:       s.status,
		Progress:     s.progress,
		CurrentStep:  s.currentStep,
		Analysis:     s.analysis,
		Optimization: s.optimization,
		Timestamp:    time.Now().UTC(),
	}
	if s.failure != nil {
		snap.Error = s.failure.Error()
	}
	return snap
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
