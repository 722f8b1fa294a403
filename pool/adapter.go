// File: pool/adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Generic adapter bridging a statically-typed pool/unit implementation pair
// into the native callback table. The factory produces a closed set of
// trampolines bound to one concrete (P, U); all type recovery happens here
// and nowhere else. Allocation crosses the boundary exactly once per pool
// (the implementation instance, inside the init callback) and once per
// wrapped thread or task (the unit, inside the create-from callbacks).

package pool

import (
	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
	"github.com/momentics/hioload-sched/managed"
)

// Impl is the data-structure side of a custom pool: a container of units
// with a declared access classification. Implementations synchronize
// internally according to that declaration; the adapter is a pass-through.
type Impl[U UnitModel] interface {
	// AccessType declares who may produce into and consume from the pool.
	AccessType() api.Access
	// GetSize reports queued, runnable units.
	GetSize() int
	// Push inserts a unit. Implementations should flip the unit's in-pool
	// marker here.
	Push(u U)
	// Pop extracts the next unit per the pool's ordering.
	Pop() (U, bool)
	// Remove extracts a specific queued unit.
	Remove(u U) error
}

// UnitModel is the work-unit side of a custom pool: a wrapper around a
// native thread or task.
type UnitModel interface {
	// Type classifies the wrapped work item.
	Type() api.UnitType
	// Thread returns the wrapped thread, or nil.
	Thread() *ult.Thread
	// Task returns the wrapped task, or nil.
	Task() *ult.Task
	// InPool reports whether the unit currently sits in a pool.
	InPool() bool
}

// Initializer is optionally implemented by pool implementations that need
// creation-time configuration.
type Initializer interface {
	InitPool(cfg ult.PoolConfig) error
}

// Finalizer is optionally implemented by pool implementations that want to
// observe the free callback (the implementation instance is destroyed right
// after).
type Finalizer interface {
	ClosePool()
}

// Def binds the adapter to one concrete implementation pair. New allocates
// the pool state; FromThread and FromTask allocate one unit wrapper per
// native handle. The three functions are the compile-time-bound allocators
// of the bridge: each runs exactly once per pool or per wrap event.
type Def[P Impl[U], U UnitModel] struct {
	New        func() P
	FromThread func(t *ult.Thread) U
	FromTask   func(k *ult.Task) U
}

// Create builds a native pool driven by the implementation pair described
// in def and returns it under scoped ownership.
//
// The returned pool must not be closed while a scheduler still references
// it; Close fails with ERR_POOL_BUSY in that case.
func Create[P Impl[U], U UnitModel](def Def[P, U], opts ...Option) (*Scoped, error) {
	if def.New == nil || def.FromThread == nil || def.FromTask == nil {
		return nil, api.Errf("pool.Create", api.ErrInvalidArgument)
	}
	cfg := buildConfig(opts)
	nd := newNativeDef(def)
	h, err := ult.CreatePool(nd, api.KindCustom, cfg)
	if err != nil {
		return nil, err
	}
	return managed.Make(Pool{h: h}), nil
}

// newNativeDef generates the twelve callback trampolines for one (P, U).
func newNativeDef[P Impl[U], U UnitModel](def Def[P, U]) *ult.PoolDef {
	nd := &ult.PoolDef{}

	nd.Init = func(p *ult.Pool, cfg ult.PoolConfig) error {
		impl := def.New()
		if ini, ok := any(impl).(Initializer); ok {
			if err := ini.InitPool(cfg); err != nil {
				return err
			}
		}
		nd.Access = impl.AccessType()
		p.SetData(impl)
		return nil
	}
	nd.GetSize = func(p *ult.Pool) int {
		return implOf[P](p, "GetSize").GetSize()
	}
	nd.Push = func(p *ult.Pool, u ult.Unit) {
		implOf[P](p, "Push").Push(u.(U))
	}
	nd.Pop = func(p *ult.Pool) ult.Unit {
		u, ok := implOf[P](p, "Pop").Pop()
		if !ok {
			return nil
		}
		return u
	}
	nd.Remove = func(p *ult.Pool, u ult.Unit) error {
		return implOf[P](p, "Remove").Remove(u.(U))
	}
	nd.Free = func(p *ult.Pool) {
		impl := implOf[P](p, "Free")
		if fin, ok := any(impl).(Finalizer); ok {
			fin.ClosePool()
		}
	}

	nd.UnitType = func(u ult.Unit) api.UnitType {
		if uu, ok := u.(U); ok {
			return uu.Type()
		}
		return api.UnitTypeOther
	}
	nd.UnitThread = func(u ult.Unit) *ult.Thread {
		if uu, ok := u.(U); ok {
			return uu.Thread()
		}
		return nil
	}
	nd.UnitTask = func(u ult.Unit) *ult.Task {
		if uu, ok := u.(U); ok {
			return uu.Task()
		}
		return nil
	}
	nd.UnitInPool = func(u ult.Unit) bool {
		if uu, ok := u.(U); ok {
			return uu.InPool()
		}
		return false
	}
	nd.UnitFromThread = func(t *ult.Thread) ult.Unit {
		return def.FromThread(t)
	}
	nd.UnitFromTask = func(k *ult.Task) ult.Unit {
		return def.FromTask(k)
	}
	nd.FreeUnit = func(u *ult.Unit) {
		if f, ok := (*u).(ult.Freeable); ok {
			f.FreeUnit()
		}
		*u = nil
	}
	nd.Owns = func(u ult.Unit) bool {
		_, ok := u.(U)
		return ok
	}
	return nd
}

// implOf recovers the typed implementation from the native pool's opaque
// data. A callback reaching here outside the init/free interval is a fatal
// usage error, not a recoverable condition.
func implOf[P any](p *ult.Pool, op string) P {
	d := p.Data()
	if d == nil {
		panic("pool: " + op + " callback invoked outside the pool's init/free interval")
	}
	return d.(P)
}
