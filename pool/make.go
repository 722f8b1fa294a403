// File: pool/make.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Deferred work submission: threads and tasks created on, and revived into,
// a pool. The Detached variants leave cleanup entirely to the runtime.

package pool

import (
	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
	"github.com/momentics/hioload-sched/managed"
)

// ScopedThread owns a thread handle created by MakeThread.
type ScopedThread = managed.Managed[*ult.Thread]

// ScopedTask owns a task handle created by MakeTask.
type ScopedTask = managed.Managed[*ult.Task]

// ThreadOption adjusts thread creation attributes.
type ThreadOption func(t *ult.Thread)

// WithThreadName names the thread for logging.
func WithThreadName(name string) ThreadOption {
	return func(t *ult.Thread) { t.SetName(name) }
}

// WithStackSize records an advisory stack size attribute. Goroutine stacks
// grow on demand, so the value is informational only.
func WithStackSize(n int) ThreadOption {
	return func(t *ult.Thread) { t.SetStackSize(n) }
}

// MakeThread creates a thread running fn, pushes it into the pool and
// returns scoped ownership of it.
func (p Pool) MakeThread(fn func(), opts ...ThreadOption) (*ScopedThread, error) {
	if p.h == nil {
		return nil, api.Errf("pool.MakeThread", api.ErrInvalidPool)
	}
	t, err := p.h.CreateThread(fn)
	if err != nil {
		return nil, err
	}
	for _, o := range opts {
		o(t)
	}
	return managed.Make(t), nil
}

// MakeThreadDetached creates and submits a thread without returning
// ownership; the runtime alone is responsible for its cleanup.
func (p Pool) MakeThreadDetached(fn func()) error {
	if p.h == nil {
		return api.Errf("pool.MakeThreadDetached", api.ErrInvalidPool)
	}
	return p.h.CreateThreadDetached(fn)
}

// MakeTask creates a one-shot task running fn, pushes it into the pool and
// returns scoped ownership of it.
func (p Pool) MakeTask(fn func()) (*ScopedTask, error) {
	if p.h == nil {
		return nil, api.Errf("pool.MakeTask", api.ErrInvalidPool)
	}
	k, err := p.h.CreateTask(fn)
	if err != nil {
		return nil, err
	}
	return managed.Make(k), nil
}

// MakeTaskDetached creates and submits a task without returning ownership.
func (p Pool) MakeTaskDetached(fn func()) error {
	if p.h == nil {
		return api.Errf("pool.MakeTaskDetached", api.ErrInvalidPool)
	}
	return p.h.CreateTaskDetached(fn)
}

// ReviveThread rebinds a joined thread to a new function and resubmits it
// into this pool, avoiding a fresh native allocation.
func (p Pool) ReviveThread(t *ult.Thread, fn func()) error {
	if p.h == nil {
		return api.Errf("pool.ReviveThread", api.ErrInvalidPool)
	}
	return p.h.ReviveThread(t, fn)
}

// ReviveTask rebinds a joined task to a new function and resubmits it into
// this pool.
func (p Pool) ReviveTask(k *ult.Task, fn func()) error {
	if p.h == nil {
		return api.Errf("pool.ReviveTask", api.ErrInvalidPool)
	}
	return p.h.ReviveTask(k, fn)
}
