// File: core/ult/spawn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Creation and revival of threads and tasks on a pool. The closure is boxed
// once and carried by the native object; the unit wrapper around it is
// allocated by the pool's def at push time.

package ult

import "github.com/momentics/hioload-sched/api"

// CreateThread boxes fn as a ULT bound to this pool and enqueues it.
func (p *Pool) CreateThread(fn func()) (*Thread, error) {
	if !p.valid() {
		return nil, api.Errf("ult.Pool.CreateThread", api.ErrInvalidPool)
	}
	if fn == nil {
		return nil, api.Errf("ult.Pool.CreateThread", api.ErrInvalidArgument)
	}
	t := NewThread(fn)
	u := p.def.UnitFromThread(t)
	t.pool, t.unit = p, u
	if err := p.Push(u); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateThreadDetached enqueues fn as a ULT without returning a handle; the
// runtime alone is responsible for its cleanup.
func (p *Pool) CreateThreadDetached(fn func()) error {
	if !p.valid() {
		return api.Errf("ult.Pool.CreateThreadDetached", api.ErrInvalidPool)
	}
	if fn == nil {
		return api.Errf("ult.Pool.CreateThreadDetached", api.ErrInvalidArgument)
	}
	t := NewThread(fn)
	t.detached = true
	u := p.def.UnitFromThread(t)
	t.pool, t.unit = p, u
	return p.Push(u)
}

// CreateTask boxes fn as a one-shot task bound to this pool and enqueues it.
func (p *Pool) CreateTask(fn func()) (*Task, error) {
	if !p.valid() {
		return nil, api.Errf("ult.Pool.CreateTask", api.ErrInvalidPool)
	}
	if fn == nil {
		return nil, api.Errf("ult.Pool.CreateTask", api.ErrInvalidArgument)
	}
	k := NewTask(fn)
	u := p.def.UnitFromTask(k)
	k.pool, k.unit = p, u
	if err := p.Push(u); err != nil {
		return nil, err
	}
	return k, nil
}

// CreateTaskDetached enqueues fn as a task without returning a handle.
func (p *Pool) CreateTaskDetached(fn func()) error {
	if !p.valid() {
		return api.Errf("ult.Pool.CreateTaskDetached", api.ErrInvalidPool)
	}
	if fn == nil {
		return api.Errf("ult.Pool.CreateTaskDetached", api.ErrInvalidArgument)
	}
	k := NewTask(fn)
	k.detached = true
	u := p.def.UnitFromTask(k)
	k.pool, k.unit = p, u
	return p.Push(u)
}

// ReviveThread reuses a terminated thread for a new function, resubmitting
// it into this pool without a fresh native allocation.
func (p *Pool) ReviveThread(t *Thread, fn func()) error {
	if !p.valid() {
		return api.Errf("ult.Pool.ReviveThread", api.ErrInvalidPool)
	}
	if fn == nil {
		return api.Errf("ult.Pool.ReviveThread", api.ErrInvalidArgument)
	}
	return t.revive(p, fn)
}

// ReviveTask reuses a terminated task for a new function, resubmitting it
// into this pool without a fresh native allocation.
func (p *Pool) ReviveTask(k *Task, fn func()) error {
	if !p.valid() {
		return api.Errf("ult.Pool.ReviveTask", api.ErrInvalidPool)
	}
	if fn == nil {
		return api.Errf("ult.Pool.ReviveTask", api.ErrInvalidArgument)
	}
	return k.revive(p, fn)
}
