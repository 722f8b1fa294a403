// File: core/ult/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// User-level threads: parkable goroutines driven by a scheduler. The body
// goroutine starts lazily on the first run and hands control back to the
// runner through the parked/resume handshake at every cooperative point.

package ult

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-sched/api"
)

// ThreadState enumerates the lifecycle of a ULT.
type ThreadState int32

const (
	ThreadReady ThreadState = iota
	ThreadRunning
	ThreadBlocked
	ThreadTerminated
)

func (s ThreadState) String() string {
	switch s {
	case ThreadReady:
		return "ready"
	case ThreadRunning:
		return "running"
	case ThreadBlocked:
		return "blocked"
	case ThreadTerminated:
		return "terminated"
	}
	return "unknown"
}

type parkKind int

const (
	parkYield parkKind = iota
	parkBlocked
	parkDone
)

var threadIDs atomic.Uint64

// Thread is a resumable user-level execution context. The zero value is not
// usable; threads are created through a pool.
type Thread struct {
	id        uint64
	name      string
	stackSize int // advisory; goroutine stacks grow on demand
	fn        func()

	pool   *Pool // pool the current unit wrapper belongs to
	unit   Unit  // wrapper while queued or suspended; nil after free
	stream *Xstream
	sched  *Sched // non-nil when this thread runs a pushed scheduler

	state  atomic.Int32
	resume chan struct{}
	// parked and done are per revive generation: a terminal park of one
	// generation must never pair with the next generation's runner.
	parked   chan parkKind
	done     chan struct{}
	started  bool
	detached bool
	mu       sync.Mutex
}

// NewThread builds a ULT that will run fn when scheduled. Prefer creating
// threads through a pool handle; NewThread exists for the adapter and tests.
func NewThread(fn func()) *Thread {
	t := &Thread{
		id:     threadIDs.Add(1),
		fn:     fn,
		resume: make(chan struct{}),
		parked: make(chan parkKind),
		done:   make(chan struct{}),
	}
	t.state.Store(int32(ThreadReady))
	return t
}

// ID returns the thread's runtime-unique id.
func (t *Thread) ID() uint64 { return t.id }

// Name returns the configured thread name, possibly empty.
func (t *Thread) Name() string { return t.name }

// SetName names the thread for logging.
func (t *Thread) SetName(name string) { t.name = name }

// StackSize returns the advisory stack size attribute.
func (t *Thread) StackSize() int { return t.stackSize }

// SetStackSize records the advisory stack size attribute. Goroutine stacks
// are managed by the Go runtime, so the value is informational.
func (t *Thread) SetStackSize(n int) { t.stackSize = n }

// State returns the thread's current state.
func (t *Thread) State() ThreadState { return ThreadState(t.state.Load()) }

// Type reports how this thread appears as a work unit.
func (t *Thread) Type() api.UnitType {
	if t.sched != nil {
		return api.UnitTypeSched
	}
	return api.UnitTypeThread
}

// Stream returns the execution stream currently driving the thread, or nil.
func (t *Thread) Stream() *Xstream { return t.stream }

// body is the goroutine that hosts one generation of the thread. It sends
// its terminal park on the channel captured at start, so a joiner that
// revives the thread right after close(done) cannot cross wires with a
// runner of the next generation.
func (t *Thread) body(done chan struct{}, parked chan parkKind) {
	registerSelf(t)
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger().Error().
					Uint64("thread", t.id).
					Interface("panic", r).
					Msg("thread body panicked")
			}
		}()
		t.fn()
	}()
	unregisterSelf()
	t.state.Store(int32(ThreadTerminated))
	close(done)
	parked <- parkDone
}

// runOnCaller resumes (or starts) the thread on the calling goroutine and
// blocks until the thread parks again. The returned kind tells the runner
// what to do with the unit wrapper.
func (t *Thread) runOnCaller() parkKind {
	t.state.Store(int32(ThreadRunning))
	t.mu.Lock()
	parked := t.parked
	if !t.started {
		t.started = true
		done := t.done
		t.mu.Unlock()
		go t.body(done, parked)
	} else {
		t.mu.Unlock()
		t.resume <- struct{}{}
	}
	return <-parked
}

// yield parks the thread so the runner can re-enqueue it.
func (t *Thread) yield() {
	t.state.Store(int32(ThreadReady))
	t.parked <- parkYield
	<-t.resume
	t.state.Store(int32(ThreadRunning))
}

// Yield gives up the calling ULT's stream; the thread goes back into its
// pool and runs again when popped. No-op when the caller is not a ULT.
func Yield() {
	if t := Self(); t != nil {
		t.yield()
	}
}

// SelfSuspend blocks the calling ULT until some other context calls Resume
// on it. The thread counts toward its pool's TotalSize but not Size while
// suspended.
func SelfSuspend() {
	t := Self()
	if t == nil {
		return
	}
	if p := t.pool; p != nil {
		p.blocked.Add(1)
	}
	t.state.Store(int32(ThreadBlocked))
	t.parked <- parkBlocked
	<-t.resume
	t.state.Store(int32(ThreadRunning))
}

// Resume makes a suspended thread runnable again by pushing its unit back
// into the pool it was popped from.
func (t *Thread) Resume() error {
	if t == nil || t.State() != ThreadBlocked {
		return api.Errf("ult.Thread.Resume", api.ErrInvalidThread)
	}
	p := t.pool
	if p == nil {
		return api.Errf("ult.Thread.Resume", api.ErrInvalidThread)
	}
	p.blocked.Add(-1)
	t.state.Store(int32(ThreadReady))
	return p.Push(t.unit)
}

// Join waits until the thread's current body terminates.
func (t *Thread) Join() error {
	if t == nil {
		return api.Errf("ult.Thread.Join", api.ErrInvalidThread)
	}
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	<-done
	return nil
}

// revive rebinds a terminated thread to a new function and pushes it into p.
// The native thread object is reused; only the unit wrapper is new.
func (t *Thread) revive(p *Pool, fn func()) error {
	if t == nil || t.State() != ThreadTerminated {
		return api.Errf("ult.Thread.revive", api.ErrInvalidThread)
	}
	u := p.def.UnitFromThread(t)
	t.mu.Lock()
	t.fn = fn
	t.started = false
	t.done = make(chan struct{})
	t.parked = make(chan parkKind)
	t.pool, t.unit = p, u
	t.mu.Unlock()
	t.state.Store(int32(ThreadReady))
	return p.Push(u)
}

// Destroy releases the thread handle. Valid only for threads that are not
// queued or running; the memory itself is garbage collected.
func (t *Thread) Destroy() error {
	if t == nil {
		return nil
	}
	switch t.State() {
	case ThreadRunning, ThreadBlocked:
		return api.Errf("ult.Thread.Destroy", api.ErrInvalidState)
	}
	return nil
}

// IsNull implements the managed resource contract.
func (t *Thread) IsNull() bool { return t == nil }

// bindUnit records the wrapper and stream a runner is about to execute the
// thread under.
func (t *Thread) bindUnit(x *Xstream, p *Pool, u Unit) {
	t.mu.Lock()
	t.stream = x
	t.pool, t.unit = p, u
	t.mu.Unlock()
}

// clearUnitIf drops the binding only while it still refers to u; a revival
// may already have bound the next generation's wrapper.
func (t *Thread) clearUnitIf(u Unit) {
	t.mu.Lock()
	if t.unit == u {
		t.unit = nil
		t.pool = nil
	}
	t.mu.Unlock()
}
