// File: sched/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scheduler handle over the native scheduler object.

package sched

import (
	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
	"github.com/momentics/hioload-sched/managed"
	"github.com/momentics/hioload-sched/pool"
)

// Impl is a custom scheduling discipline; see ult.SchedImpl.
type Impl = ult.SchedImpl

// Ctx is the runtime view handed to a custom discipline's loop.
type Ctx = ult.SchedCtx

// Scheduler is a handle to a native scheduler. The zero value is null.
type Scheduler struct {
	s *ult.Sched
}

// Scoped owns a Scheduler; closing it detaches its pools and frees it.
type Scoped = managed.Managed[Scheduler]

// New builds a scheduler with the built-in round-robin FIFO discipline over
// the given pools.
func New(pools ...pool.Pool) (*Scoped, error) {
	return NewCustom(nil, pools...)
}

// NewCustom builds a scheduler driven by a custom discipline. impl may be
// nil, which selects the built-in loop.
func NewCustom(impl Impl, pools ...pool.Pool) (*Scoped, error) {
	native := make([]*ult.Pool, 0, len(pools))
	for _, p := range pools {
		if p.IsNull() {
			return nil, api.Errf("sched.NewCustom", api.ErrInvalidPool)
		}
		native = append(native, p.NativeHandle())
	}
	s, err := ult.NewSched(impl, native...)
	if err != nil {
		return nil, err
	}
	return managed.Make(Scheduler{s: s}), nil
}

// FromNative wraps an existing native scheduler without taking ownership.
func FromNative(s *ult.Sched) Scheduler { return Scheduler{s: s} }

// NativeHandle exposes the underlying native scheduler.
func (s Scheduler) NativeHandle() *ult.Sched { return s.s }

// IsNull reports whether the handle refers to nothing.
func (s Scheduler) IsNull() bool { return s.s == nil }

// NumPools returns the number of attached pools.
func (s Scheduler) NumPools() (int, error) {
	if s.s == nil {
		return 0, api.Errf("sched.NumPools", api.ErrInvalidSched)
	}
	return s.s.NumPools(), nil
}

// AttachPool adds a pool to the scheduler.
func (s Scheduler) AttachPool(p pool.Pool) error {
	if s.s == nil {
		return api.Errf("sched.AttachPool", api.ErrInvalidSched)
	}
	if p.IsNull() {
		return api.Errf("sched.AttachPool", api.ErrInvalidPool)
	}
	return s.s.AttachPool(p.NativeHandle())
}

// DetachPool removes a pool from the scheduler.
func (s Scheduler) DetachPool(p pool.Pool) error {
	if s.s == nil {
		return api.Errf("sched.DetachPool", api.ErrInvalidSched)
	}
	if p.IsNull() {
		return api.Errf("sched.DetachPool", api.ErrInvalidPool)
	}
	return s.s.DetachPool(p.NativeHandle())
}

// Finish asks a running scheduler loop to exit after its current unit.
func (s Scheduler) Finish() error {
	if s.s == nil {
		return api.Errf("sched.Finish", api.ErrInvalidSched)
	}
	s.s.Finish()
	return nil
}

// Destroy frees the native scheduler; used by the Scoped owner.
func (s Scheduler) Destroy() error {
	if s.s == nil {
		return api.Errf("sched.Destroy", api.ErrInvalidSched)
	}
	return s.s.Destroy()
}
