// File: core/ult/task.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One-shot tasks. A task runs its closure to completion on the runner's
// goroutine; there is no suspension and no separate body goroutine.

package ult

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-sched/api"
)

// TaskState enumerates the lifecycle of a task.
type TaskState int32

const (
	TaskReady TaskState = iota
	TaskRunning
	TaskTerminated
)

func (s TaskState) String() string {
	switch s {
	case TaskReady:
		return "ready"
	case TaskRunning:
		return "running"
	case TaskTerminated:
		return "terminated"
	}
	return "unknown"
}

var taskIDs atomic.Uint64

// Task is a one-shot, non-resumable deferred job.
type Task struct {
	id   uint64
	name string
	fn   func()

	pool *Pool
	unit Unit

	state    atomic.Int32
	done     chan struct{}
	detached bool
	mu       sync.Mutex
}

// NewTask builds a task that will run fn when scheduled. Prefer creating
// tasks through a pool handle.
func NewTask(fn func()) *Task {
	k := &Task{
		id:   taskIDs.Add(1),
		fn:   fn,
		done: make(chan struct{}),
	}
	k.state.Store(int32(TaskReady))
	return k
}

// ID returns the task's runtime-unique id.
func (k *Task) ID() uint64 { return k.id }

// State returns the task's current state.
func (k *Task) State() TaskState { return TaskState(k.state.Load()) }

// runOnCaller executes the task body on the calling goroutine.
func (k *Task) runOnCaller() {
	k.state.Store(int32(TaskRunning))
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger().Error().
					Uint64("task", k.id).
					Interface("panic", r).
					Msg("task body panicked")
			}
		}()
		k.fn()
	}()
	k.mu.Lock()
	done := k.done
	k.mu.Unlock()
	k.state.Store(int32(TaskTerminated))
	close(done)
}

// Join waits until the task's current body terminates.
func (k *Task) Join() error {
	if k == nil {
		return api.Errf("ult.Task.Join", api.ErrInvalidTask)
	}
	k.mu.Lock()
	done := k.done
	k.mu.Unlock()
	<-done
	return nil
}

// revive rebinds a terminated task to a new function and pushes it into p.
// The native task object is reused; only the unit wrapper is new.
func (k *Task) revive(p *Pool, fn func()) error {
	if k == nil || k.State() != TaskTerminated {
		return api.Errf("ult.Task.revive", api.ErrInvalidTask)
	}
	u := p.def.UnitFromTask(k)
	k.mu.Lock()
	k.fn = fn
	k.done = make(chan struct{})
	k.pool, k.unit = p, u
	k.mu.Unlock()
	k.state.Store(int32(TaskReady))
	return p.Push(u)
}

// Destroy releases the task handle. Valid only when the task is not running.
func (k *Task) Destroy() error {
	if k == nil {
		return nil
	}
	if k.State() == TaskRunning {
		return api.Errf("ult.Task.Destroy", api.ErrInvalidState)
	}
	return nil
}

// IsNull implements the managed resource contract.
func (k *Task) IsNull() bool { return k == nil }

// clearUnitIf drops the binding only while it still refers to u; a revival
// may already have bound the next generation's wrapper.
func (k *Task) clearUnitIf(u Unit) {
	k.mu.Lock()
	if k.unit == u {
		k.unit = nil
		k.pool = nil
	}
	k.mu.Unlock()
}
