// File: core/ult/unit.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Opaque work units and the pool callback table. The twelve slots of PoolDef
// are the complete boundary between the runtime and a pool implementation.

package ult

import (
	"sync/atomic"

	"github.com/momentics/hioload-sched/api"
)

// Unit is the runtime's opaque view of a queued work item. The concrete type
// behind it is always the unit type of the def that created it; it is stored
// as-is, never re-wrapped, so unit identity is pointer identity.
type Unit any

// Freeable is implemented by unit types that want to observe the runtime
// freeing their wrapper. FreeUnit is invoked exactly once per unit, when the
// wrapped thread or task leaves the runtime for good.
type Freeable interface {
	FreeUnit()
}

// PoolConfig carries creation-time parameters into a pool implementation's
// init callback.
type PoolConfig struct {
	Name     string
	Capacity int
}

// PoolDef is the callback table a pool is driven through. All slots are
// mandatory except Owns, which is only consulted by debug checks.
//
// Pool-level slots receive the native pool whose opaque data they may read
// through (*Pool).Data; unit-level slots receive (or produce) opaque units.
type PoolDef struct {
	// Access is the declared concurrency discipline of the implementation.
	Access api.Access

	// Init allocates the implementation instance and attaches it with
	// (*Pool).SetData. Called exactly once, at pool creation.
	Init func(p *Pool, cfg PoolConfig) error
	// GetSize reports the number of queued, runnable units.
	GetSize func(p *Pool) int
	// Push inserts a unit.
	Push func(p *Pool, u Unit)
	// Pop extracts the next unit per the pool's ordering, or nil.
	Pop func(p *Pool) Unit
	// Remove extracts a specific queued unit before it is popped.
	Remove func(p *Pool, u Unit) error
	// Free destroys the implementation instance. Called exactly once, at
	// pool destruction. The data pointer is invalid afterwards.
	Free func(p *Pool)

	// UnitType classifies a unit.
	UnitType func(u Unit) api.UnitType
	// UnitThread returns the wrapped thread; nil if the unit is not one.
	UnitThread func(u Unit) *Thread
	// UnitTask returns the wrapped task; nil if the unit is not one.
	UnitTask func(u Unit) *Task
	// UnitInPool reports whether the unit currently sits in a pool.
	UnitInPool func(u Unit) bool
	// UnitFromThread wraps a thread as a unit. One allocation per call.
	UnitFromThread func(t *Thread) Unit
	// UnitFromTask wraps a task as a unit. One allocation per call.
	UnitFromTask func(k *Task) Unit
	// FreeUnit releases a unit wrapper and nulls the caller's reference.
	FreeUnit func(u *Unit)

	// Owns reports whether the unit was produced by this def. Debug only.
	Owns func(u Unit) bool
}

func (d *PoolDef) validate() error {
	if d == nil ||
		d.Init == nil || d.GetSize == nil || d.Push == nil || d.Pop == nil ||
		d.Remove == nil || d.Free == nil ||
		d.UnitType == nil || d.UnitThread == nil || d.UnitTask == nil ||
		d.UnitInPool == nil || d.UnitFromThread == nil ||
		d.UnitFromTask == nil || d.FreeUnit == nil {
		return api.Errf("ult.PoolDef.validate", api.ErrInvalidArgument)
	}
	return nil
}

var debugChecks atomic.Bool

// SetDebugChecks toggles runtime verification that units pushed into or
// removed from a pool were produced by that pool's def. Off by default; the
// checked build of the test suite turns it on.
func SetDebugChecks(on bool) { debugChecks.Store(on) }

// DebugChecks reports whether debug verification is enabled.
func DebugChecks() bool { return debugChecks.Load() }
