// Package slot tracks the state of one asynchronous request kind. Starting a new
// request discards whatever the previous one produced, and completions from a
// superseded request are dropped.
package slot

import (
	"sync"
	"time"
)

type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

type (
	// Ticket identifies one started request.
	Ticket uint64

	// Snapshot is a point-in-time copy of a slot.
	Snapshot[T any] struct {
		State     State
		Result    T
		Err       error
		Ticket    Ticket
		StartedAt time.Time
		EndedAt   time.Time
	}

	Slot[T any] struct {
		mu      sync.Mutex
		current Snapshot[T]
		now     func() time.Time
	}
)

func New[T any]() *Slot[T] {
	return &Slot[T]{
		current: Snapshot[T]{State: StateIdle},
		now:     time.Now,
	}
}

// Begin moves the slot to pending from any state and clears the previous result
// or error.
func (s *Slot[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Ticket + 1
	s.current = Snapshot[T]{
		State:     StatePending,
		Ticket:    next,
		StartedAt: s.now(),
	}
	return next
}

// Succeed records the result of the request identified by ticket. It reports
// false when a newer request has started since.
func (s *Slot[T]) Succeed(ticket Ticket, result T) bool {
	return s.finish(ticket, func(snap *Snapshot[T]) {
		snap.State = StateSucceeded
		snap.Result = result
	})
}

// Fail records the error of the request identified by ticket. It reports false
// when a newer request has started since.
func (s *Slot[T]) Fail(ticket Ticket, err error) bool {
	return s.finish(ticket, func(snap *Snapshot[T]) {
		snap.State = StateFailed
		snap.Err = err
	})
}

// Complete is Succeed or Fail depending on err.
func (s *Slot[T]) Complete(ticket Ticket, result T, err error) bool {
	if err != nil {
		return s.Fail(ticket, err)
	}
	return s.Succeed(ticket, result)
}

func (s *Slot[T]) finish(ticket Ticket, apply func(*Snapshot[T])) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket != s.current.Ticket || s.current.State != StatePending {
		return false
	}
	apply(&s.current)
	s.current.EndedAt = s.now()
	return true
}

// Reset returns the slot to idle. Outstanding tickets become stale.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Snapshot[T]{State: StateIdle, Ticket: s.current.Ticket + 1}
}

func (s *Slot[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

func (s *Slot[T]) State() State {
	return s.Snapshot().State
}
