// Package scheduler serializes overlapping engine runs behind a single
// mutex so that per-engine global state (the persistent globals object,
// the module cache) is never touched by two runs at once. Grounded on the
// single-owner-mutex pattern used for shared service state across the
// retrieval pack's service repos (goroutine-serialized request handlers
// guarding one piece of mutable state behind one lock, acquired for the
// duration of the unit of work and released on every exit path including
// panic-recover).
package scheduler

import (
	"errors"
	"sync"
)

// ErrBusy is returned by TryRun when a run is already in progress and the
// caller asked for non-blocking (sync, reject-if-held) semantics.
var ErrBusy = errors.New("scheduler: a run is already in progress")

// Scheduler serializes runs into a critical section guarding one engine's
// mutable run-affecting state, using one sync.Mutex. Callers waiting in
// Run are admitted in whatever order the mutex grants the lock, which is
// not guaranteed to be their arrival order.
type Scheduler struct {
	mu sync.Mutex
}

// New returns a ready Scheduler.
func New() *Scheduler { return &Scheduler{} }

// Run blocks until it is this call's turn, runs fn while holding the
// lock, and releases the lock on every exit path, including if fn panics
// (the panic is re-raised to the caller after the lock is released).
func (s *Scheduler) Run(fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// TryRun runs fn only if no other run currently holds the lock, returning
// ErrBusy otherwise. Used by the host-facing synchronous Eval entry point,
// which spec.md requires to reject rather than queue behind a concurrent run.
func (s *Scheduler) TryRun(fn func() error) error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()
	return fn()
}
