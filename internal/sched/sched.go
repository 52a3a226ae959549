// Package sched provides a single dedicated worker goroutine that drains a
// FIFO of deferred closures, one at a time, never concurrently. It is the
// cooperative-scheduling primitive the engine above builds on: every
// mutation of engine state happens on this one goroutine, so the engine can
// reason about its own state as if it were single-threaded.
/*
 * Copyright (c) 2024, asynciter authors.
 */
package sched

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// Scheduler runs deferred tasks serially on one worker goroutine.
type Scheduler struct {
	mu       sync.Mutex
	hasWork  *sync.Cond // signaled when q grows; only the worker waits on it
	wentIdle *sync.Cond // broadcast when pending hits 0; only Idle() waits on it
	q        []func()
	pending  int // scheduled-but-not-yet-run + currently-running
	started  bool

	workerGID   uint64 // goroutine ID of loop(), fixed once set; 0 before Start
	workerGIDMu sync.RWMutex
}

// currentGoroutineID extracts the calling goroutine's ID from its own stack
// trace header ("goroutine 123 [running]:"), the only portable way to obtain
// it without cgo or runtime internals.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}

// New creates a scheduler. Its worker goroutine is started lazily by the
// first Schedule (or Dispatch); calling Start beforehand is optional.
func New() *Scheduler {
	s := &Scheduler{}
	s.hasWork = sync.NewCond(&s.mu)
	s.wentIdle = sync.NewCond(&s.mu)
	return s
}

// Start launches the worker goroutine. Idempotent.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	go s.loop()
}

func (s *Scheduler) loop() {
	s.workerGIDMu.Lock()
	s.workerGID = currentGoroutineID()
	s.workerGIDMu.Unlock()

	for {
		s.mu.Lock()
		for len(s.q) == 0 {
			s.hasWork.Wait()
		}
		fn := s.q[0]
		s.q = s.q[1:]
		s.mu.Unlock()

		fn()

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.wentIdle.Broadcast()
		}
		s.mu.Unlock()
	}
}

// Schedule enqueues fn to run later, on the worker goroutine, after the
// current call stack (of whoever called Schedule) unwinds. Fire-and-forget:
// callers that need to know when fn (and anything it schedules) has
// settled should use Idle/Dispatch instead.
func (s *Scheduler) Schedule(fn func()) {
	s.Start()
	s.mu.Lock()
	s.pending++
	s.q = append(s.q, fn)
	s.hasWork.Signal()
	s.mu.Unlock()
}

// Dispatch runs fn on the worker goroutine and blocks the calling goroutine
// until fn returns, giving external callers (arbitrary goroutines) a
// synchronous, thread-safe entry point into engine state that otherwise
// only the worker goroutine may touch. It does not wait for tasks fn itself
// schedules via Schedule — those settle later, asynchronously, exactly as
// the design intends.
//
// Dispatch is reentrant: a call made from the worker goroutine itself
// (composer construction code invoked from within another iterator's hook,
// for instance) runs fn inline instead of enqueueing and waiting — waiting
// would have that goroutine block on a queue only it can drain, i.e. deadlock
// on itself. Any other goroutine, regardless of whether the worker happens
// to be busy with some other task right now, always goes through the queue:
// testing "is the worker busy" instead of "am I the worker" would let a
// second goroutine run fn concurrently with whatever the worker is already
// doing, racing on the same engine state Dispatch exists to serialize.
func (s *Scheduler) Dispatch(fn func()) {
	s.workerGIDMu.RLock()
	inline := s.workerGID != 0 && s.workerGID == currentGoroutineID()
	s.workerGIDMu.RUnlock()
	if inline {
		fn()
		return
	}
	done := make(chan struct{})
	s.Schedule(func() {
		fn()
		close(done)
	})
	<-done
}

// Idle blocks the calling goroutine until the queue is empty and no task is
// currently running — i.e. every effect scheduled so far (transitively) has
// settled. Tests use this instead of sleeping to observe deferred effects
// deterministically.
func (s *Scheduler) Idle() {
	s.mu.Lock()
	for s.pending != 0 {
		s.wentIdle.Wait()
	}
	s.mu.Unlock()
}

var def = New()

// Default returns the process-wide scheduler: one shared queue and worker
// goroutine for every iterator in the process that doesn't ask for its own
// via NewScheduler.
func Default() *Scheduler { return def }
