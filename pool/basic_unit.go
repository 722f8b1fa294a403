// File: pool/basic_unit.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Work-unit wrapper used by the built-in pool kinds.

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
)

// BasicUnit wraps a native thread or task for the built-in pool kinds. It is
// exported so custom schedulers can pop from and push into built-in pools.
type BasicUnit struct {
	t      *ult.Thread
	k      *ult.Task
	inPool atomic.Bool
	freed  atomic.Bool
}

// NewUnitFromThread wraps a thread.
func NewUnitFromThread(t *ult.Thread) *BasicUnit { return &BasicUnit{t: t} }

// NewUnitFromTask wraps a task.
func NewUnitFromTask(k *ult.Task) *BasicUnit { return &BasicUnit{k: k} }

// Type classifies the wrapped work item.
func (u *BasicUnit) Type() api.UnitType {
	if u.t != nil {
		return u.t.Type()
	}
	if u.k != nil {
		return api.UnitTypeTask
	}
	return api.UnitTypeOther
}

// Thread returns the wrapped thread, or nil.
func (u *BasicUnit) Thread() *ult.Thread { return u.t }

// Task returns the wrapped task, or nil.
func (u *BasicUnit) Task() *ult.Task { return u.k }

// InPool reports whether the unit currently sits in a pool.
func (u *BasicUnit) InPool() bool { return u.inPool.Load() }

// FreeUnit marks the wrapper released; called by the runtime exactly once.
func (u *BasicUnit) FreeUnit() { u.freed.Store(true) }

func (u *BasicUnit) setInPool(v bool) { u.inPool.Store(v) }
