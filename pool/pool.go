// File: pool/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The public Pool handle: a lightweight reference with null state, reference
// copies and move semantics over the native pool object.

package pool

import (
	"time"

	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
	"github.com/momentics/hioload-sched/managed"
)

// Pool is a handle to a native pool. The zero value is the null handle.
// Copying a Pool copies the reference, not the pool.
type Pool struct {
	h *ult.Pool
}

// Scoped is a single-owner wrapper around a Pool; closing it frees the
// native pool exactly once. A pool still attached to a live scheduler
// refuses to be freed (ERR_POOL_BUSY) — tear streams and schedulers down
// first.
type Scoped = managed.Managed[Pool]

// FromNative wraps an existing native pool. The handle does not own it.
func FromNative(h *ult.Pool) Pool { return Pool{h: h} }

// NativeHandle exposes the underlying native pool object.
func (p Pool) NativeHandle() *ult.Pool { return p.h }

// IsNull reports whether the handle refers to nothing.
func (p Pool) IsNull() bool { return p.h == nil }

// Equal reports whether two handles refer to the same native pool.
func (p Pool) Equal(other Pool) bool { return p.h == other.h }

// Move empties the receiver and returns a handle to the same pool.
func (p *Pool) Move() Pool {
	out := Pool{h: p.h}
	p.h = nil
	return out
}

// Destroy frees the native pool. Used by the Scoped owner; direct callers
// must guarantee no scheduler still references the pool.
func (p Pool) Destroy() error {
	if p.h == nil {
		return api.Errf("pool.Destroy", api.ErrInvalidPool)
	}
	return p.h.Free()
}

// GetAccess returns the pool's declared access classification.
func (p Pool) GetAccess() (api.Access, error) {
	if p.h == nil {
		return 0, api.Errf("pool.GetAccess", api.ErrInvalidPool)
	}
	return p.h.Access()
}

// Size returns the number of queued runnable units, excluding blocked ones.
func (p Pool) Size() (int, error) {
	if p.h == nil {
		return 0, api.Errf("pool.Size", api.ErrInvalidPool)
	}
	return p.h.Size()
}

// TotalSize returns the number of units associated with the pool, including
// blocked ones.
func (p Pool) TotalSize() (int, error) {
	if p.h == nil {
		return 0, api.Errf("pool.TotalSize", api.ErrInvalidPool)
	}
	return p.h.TotalSize()
}

// ID returns the pool's runtime-unique id.
func (p Pool) ID() (int, error) {
	if p.h == nil {
		return 0, api.Errf("pool.ID", api.ErrInvalidPool)
	}
	return p.h.ID()
}

// Stats snapshots pool occupancy.
func (p Pool) Stats() (api.PoolStats, error) {
	if p.h == nil {
		return api.PoolStats{}, api.Errf("pool.Stats", api.ErrInvalidPool)
	}
	return p.h.Stats()
}

// AddSched enqueues a scheduler as a work unit in this pool; when picked up
// it becomes the active scheduler for the popping stream until its loop
// returns.
func (p Pool) AddSched(s *ult.Sched) error {
	if p.h == nil {
		return api.Errf("pool.AddSched", api.ErrInvalidPool)
	}
	return p.h.AddSched(s)
}

// Pop extracts the next unit per the pool's ordering. A nil unit with a nil
// error means the pool was empty (or, for FIFO-wait pools, cannot happen:
// the call blocks instead).
func Pop[U UnitModel](p Pool) (U, error) {
	var zero U
	if p.h == nil {
		return zero, api.Errf("pool.Pop", api.ErrInvalidPool)
	}
	u, err := p.h.Pop()
	if err != nil || u == nil {
		return zero, err
	}
	uu, ok := u.(U)
	if !ok {
		return zero, api.Errf("pool.Pop", api.ErrInvalidUnit)
	}
	return uu, nil
}

// PopTimeout is Pop with an upper bound on the wait. d == 0 never blocks;
// d < 0 waits indefinitely.
func PopTimeout[U UnitModel](p Pool, d time.Duration) (U, error) {
	var zero U
	if p.h == nil {
		return zero, api.Errf("pool.PopTimeout", api.ErrInvalidPool)
	}
	u, err := p.h.PopTimeout(d)
	if err != nil || u == nil {
		return zero, err
	}
	uu, ok := u.(U)
	if !ok {
		return zero, api.Errf("pool.PopTimeout", api.ErrInvalidUnit)
	}
	return uu, nil
}

// Push inserts a unit previously popped from a pool with the same unit
// type, or freshly created for this pool. Pushing a foreign-typed unit is a
// caller error; enable ult.SetDebugChecks to have it verified.
func Push[U UnitModel](p Pool, u U) error {
	if p.h == nil {
		return api.Errf("pool.Push", api.ErrInvalidPool)
	}
	return p.h.Push(u)
}

// Remove extracts a specific unit from the pool before it is popped.
func Remove[U UnitModel](p Pool, u U) error {
	if p.h == nil {
		return api.Errf("pool.Remove", api.ErrInvalidPool)
	}
	return p.h.Remove(u)
}

// RunUnit hands a popped unit to the calling stream for immediate
// execution. Only meaningful inside a custom scheduler's run loop.
func RunUnit[U UnitModel](p Pool, u U) error {
	if p.h == nil {
		return api.Errf("pool.RunUnit", api.ErrInvalidPool)
	}
	return p.h.RunUnit(u)
}
