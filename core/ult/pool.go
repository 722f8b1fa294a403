// File: core/ult/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Native pool object. Owns the opaque implementation data for exactly the
// interval between the def's Init and Free callbacks; every operation outside
// that interval fails with ERR_INVALID_POOL.

package ult

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-sched/api"
)

var poolIDs atomic.Int64

// Pool is a native pool object. It is always manipulated by pointer; the
// public pool package wraps it in a copyable handle.
type Pool struct {
	id   int
	def  *PoolDef
	kind api.Kind
	cfg  PoolConfig

	mu   sync.Mutex // guards the wait condition
	cond *sync.Cond

	// data is written once by Init and cleared by Free. Atomic rather than
	// under mu: def callbacks read it while PopTimeout holds mu waiting.
	data atomic.Pointer[any]

	blocked  atomic.Int64
	attached atomic.Int32
	freed    atomic.Bool
}

// CreatePool builds a native pool driven by def. The def's Init callback
// runs before CreatePool returns and must attach implementation data.
func CreatePool(def *PoolDef, kind api.Kind, cfg PoolConfig) (*Pool, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	p := &Pool{
		id:   int(poolIDs.Add(1)),
		def:  def,
		kind: kind,
		cfg:  cfg,
	}
	p.cond = sync.NewCond(&p.mu)
	if err := def.Init(p, cfg); err != nil {
		return nil, api.ErrfWrap("ult.CreatePool", api.ErrMem, err)
	}
	if p.Data() == nil {
		return nil, api.Errf("ult.CreatePool", api.ErrMem)
	}
	logger().Debug().
		Int("pool", p.id).
		Str("access", def.Access.String()).
		Str("kind", kind.String()).
		Msg("pool created")
	return p, nil
}

// SetData attaches the opaque implementation instance. Called by the def's
// Init callback only.
func (p *Pool) SetData(d any) {
	if d == nil {
		p.data.Store(nil)
		return
	}
	p.data.Store(&d)
}

// Data returns the opaque implementation instance, or nil outside the
// Init/Free interval.
func (p *Pool) Data() any {
	if v := p.data.Load(); v != nil {
		return *v
	}
	return nil
}

func (p *Pool) valid() bool { return p != nil && !p.freed.Load() }

// ID returns the pool's runtime-unique id.
func (p *Pool) ID() (int, error) {
	if !p.valid() {
		return 0, api.Errf("ult.Pool.ID", api.ErrInvalidPool)
	}
	return p.id, nil
}

// Access returns the pool's declared access classification.
func (p *Pool) Access() (api.Access, error) {
	if !p.valid() {
		return 0, api.Errf("ult.Pool.Access", api.ErrInvalidPool)
	}
	return p.def.Access, nil
}

// Kind returns the pool's kind.
func (p *Pool) Kind() api.Kind { return p.kind }

// Name returns the configured pool name, possibly empty.
func (p *Pool) Name() string { return p.cfg.Name }

// Size reports queued, runnable units. Blocked units are excluded.
func (p *Pool) Size() (int, error) {
	if !p.valid() {
		return 0, api.Errf("ult.Pool.Size", api.ErrInvalidPool)
	}
	return p.def.GetSize(p), nil
}

// TotalSize reports queued plus blocked units.
func (p *Pool) TotalSize() (int, error) {
	if !p.valid() {
		return 0, api.Errf("ult.Pool.TotalSize", api.ErrInvalidPool)
	}
	return p.def.GetSize(p) + int(p.blocked.Load()), nil
}

// Stats snapshots the pool occupancy.
func (p *Pool) Stats() (api.PoolStats, error) {
	if !p.valid() {
		return api.PoolStats{}, api.Errf("ult.Pool.Stats", api.ErrInvalidPool)
	}
	n := p.def.GetSize(p)
	b := int(p.blocked.Load())
	return api.PoolStats{Size: n, Blocked: b, TotalSize: n + b}, nil
}

// Push inserts a unit. The unit must have been produced by this pool's def,
// or by the def of a pool with an identical unit type; with debug checks on
// the former is verified.
func (p *Pool) Push(u Unit) error {
	if !p.valid() {
		return api.Errf("ult.Pool.Push", api.ErrInvalidPool)
	}
	if u == nil {
		return api.Errf("ult.Pool.Push", api.ErrInvalidUnit)
	}
	if DebugChecks() && p.def.Owns != nil && !p.def.Owns(u) {
		return api.Errf("ult.Pool.Push", api.ErrInvalidUnit)
	}
	p.def.Push(p, u)
	p.wake()
	return nil
}

// Pop extracts the next unit per the pool's ordering. For KindFIFOWait it
// blocks until a unit arrives or the pool is freed; for every other kind an
// empty pool yields (nil, nil).
func (p *Pool) Pop() (Unit, error) {
	if p.kind == api.KindFIFOWait {
		return p.PopTimeout(-1)
	}
	if !p.valid() {
		return nil, api.Errf("ult.Pool.Pop", api.ErrInvalidPool)
	}
	return p.def.Pop(p), nil
}

// PopTimeout blocks up to d for a unit. d < 0 waits indefinitely; d == 0 is
// a non-blocking attempt. Returns (nil, nil) on timeout.
func (p *Pool) PopTimeout(d time.Duration) (Unit, error) {
	if !p.valid() {
		return nil, api.Errf("ult.Pool.PopTimeout", api.ErrInvalidPool)
	}
	if u := p.def.Pop(p); u != nil || d == 0 {
		return u, nil
	}
	var deadline time.Time
	if d > 0 {
		deadline = time.Now().Add(d)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.freed.Load() {
			return nil, api.Errf("ult.Pool.PopTimeout", api.ErrInvalidPool)
		}
		if u := p.def.Pop(p); u != nil {
			return u, nil
		}
		if d > 0 {
			remain := time.Until(deadline)
			if remain <= 0 {
				return nil, nil
			}
			// sync.Cond has no timed wait; arm a wakeup instead.
			t := time.AfterFunc(remain, p.wake)
			p.cond.Wait()
			t.Stop()
		} else {
			p.cond.Wait()
		}
	}
}

func (p *Pool) wake() {
	p.mu.Lock()
	p.mu.Unlock() //nolint:staticcheck // pairs the broadcast with waiter state
	p.cond.Broadcast()
}

// Remove extracts a specific unit before it is popped. Fails with
// ERR_NOT_FOUND when the unit is not queued, or ERR_FEATURE_NA when the pool
// kind does not support removal.
func (p *Pool) Remove(u Unit) error {
	if !p.valid() {
		return api.Errf("ult.Pool.Remove", api.ErrInvalidPool)
	}
	if u == nil {
		return api.Errf("ult.Pool.Remove", api.ErrInvalidUnit)
	}
	if DebugChecks() && p.def.Owns != nil && !p.def.Owns(u) {
		return api.Errf("ult.Pool.Remove", api.ErrInvalidUnit)
	}
	return p.def.Remove(p, u)
}

// AddSched enqueues a scheduler as a work unit. When the stream's running
// scheduler pops it, sched becomes the active scheduler for that stream
// until its run loop returns.
func (p *Pool) AddSched(s *Sched) error {
	if !p.valid() {
		return api.Errf("ult.Pool.AddSched", api.ErrInvalidPool)
	}
	if s == nil || s.freed.Load() {
		return api.Errf("ult.Pool.AddSched", api.ErrInvalidSched)
	}
	t := newSchedThread(s)
	u := p.def.UnitFromThread(t)
	t.pool, t.unit = p, u
	return p.Push(u)
}

// RunUnit executes a previously popped unit on the calling goroutine. Meant
// to be called from inside a custom scheduler's run loop.
func (p *Pool) RunUnit(u Unit) error {
	return runUnit(nil, p, u)
}

// Free destroys the pool and its implementation data, exactly once. Fails
// with ERR_POOL_BUSY while schedulers are still attached.
func (p *Pool) Free() error {
	if p == nil {
		return api.Errf("ult.Pool.Free", api.ErrInvalidPool)
	}
	if n := p.attached.Load(); n > 0 {
		return api.Errf("ult.Pool.Free", api.ErrPoolBusy)
	}
	if !p.freed.CompareAndSwap(false, true) {
		return api.Errf("ult.Pool.Free", api.ErrInvalidPool)
	}
	p.def.Free(p)
	p.data.Store(nil)
	p.wake()
	logger().Debug().Int("pool", p.id).Msg("pool freed")
	return nil
}

// attach/detach track scheduler references for the teardown-order check.
func (p *Pool) attach() { p.attached.Add(1) }
func (p *Pool) detach() { p.attached.Add(-1) }
