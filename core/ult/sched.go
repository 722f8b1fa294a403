// File: core/ult/sched.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Native schedulers. The built-in loop round-robins the attached pools with
// exponential idle backoff; custom disciplines plug in through SchedImpl and
// drive units with SchedCtx.RunUnit.

package ult

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-sched/api"
)

// SchedImpl is a custom scheduling discipline. Init runs once at scheduler
// creation; Run is the scheduler loop, executed on the stream's goroutine
// (or inside a ULT when the scheduler was pushed into a pool via AddSched).
type SchedImpl interface {
	Init(ctx *SchedCtx) error
	Run(ctx *SchedCtx)
}

var schedIDs atomic.Int64

// Sched is a native scheduler: an ordered set of pools plus a discipline.
type Sched struct {
	id    int
	impl  SchedImpl // nil selects the built-in loop
	mu    sync.RWMutex
	pools []*Pool

	finish atomic.Bool
	freed  atomic.Bool
}

// NewSched builds a scheduler over the given pools. A nil impl selects the
// built-in round-robin FIFO discipline. Every pool is marked attached until
// the scheduler is destroyed.
func NewSched(impl SchedImpl, pools ...*Pool) (*Sched, error) {
	for _, p := range pools {
		if !p.valid() {
			return nil, api.Errf("ult.NewSched", api.ErrInvalidPool)
		}
	}
	s := &Sched{
		id:    int(schedIDs.Add(1)),
		impl:  impl,
		pools: append([]*Pool(nil), pools...),
	}
	for _, p := range s.pools {
		p.attach()
	}
	if impl != nil {
		if err := impl.Init(&SchedCtx{s: s}); err != nil {
			s.detachAll()
			return nil, api.ErrfWrap("ult.NewSched", api.ErrInvalidSched, err)
		}
	}
	return s, nil
}

// ID returns the scheduler's runtime-unique id.
func (s *Sched) ID() int { return s.id }

// NumPools returns the number of attached pools.
func (s *Sched) NumPools() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pools)
}

// PoolAt returns the i-th attached pool.
func (s *Sched) PoolAt(i int) (*Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.pools) {
		return nil, api.Errf("ult.Sched.PoolAt", api.ErrInvalidArgument)
	}
	return s.pools[i], nil
}

// AttachPool adds a pool to the scheduler.
func (s *Sched) AttachPool(p *Pool) error {
	if s == nil || s.freed.Load() {
		return api.Errf("ult.Sched.AttachPool", api.ErrInvalidSched)
	}
	if !p.valid() {
		return api.Errf("ult.Sched.AttachPool", api.ErrInvalidPool)
	}
	s.mu.Lock()
	s.pools = append(s.pools, p)
	s.mu.Unlock()
	p.attach()
	return nil
}

// DetachPool removes a pool from the scheduler.
func (s *Sched) DetachPool(p *Pool) error {
	if s == nil || s.freed.Load() {
		return api.Errf("ult.Sched.DetachPool", api.ErrInvalidSched)
	}
	s.mu.Lock()
	for i, q := range s.pools {
		if q == p {
			s.pools = append(s.pools[:i], s.pools[i+1:]...)
			s.mu.Unlock()
			p.detach()
			return nil
		}
	}
	s.mu.Unlock()
	return api.Errf("ult.Sched.DetachPool", api.ErrNotFound)
}

// Finish asks the scheduler loop to exit after the unit it is currently
// running, leaving queued units in place.
func (s *Sched) Finish() { s.finish.Store(true) }

// Destroy detaches all pools and invalidates the scheduler, exactly once.
func (s *Sched) Destroy() error {
	if s == nil {
		return api.Errf("ult.Sched.Destroy", api.ErrInvalidSched)
	}
	if !s.freed.CompareAndSwap(false, true) {
		return api.Errf("ult.Sched.Destroy", api.ErrInvalidSched)
	}
	s.finish.Store(true)
	s.detachAll()
	return nil
}

// IsNull implements the managed resource contract.
func (s *Sched) IsNull() bool { return s == nil }

func (s *Sched) detachAll() {
	s.mu.Lock()
	pools := s.pools
	s.pools = nil
	s.mu.Unlock()
	for _, p := range pools {
		p.detach()
	}
}

func (s *Sched) poolsSnapshot() []*Pool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Pool(nil), s.pools...)
}

func (s *Sched) idle() bool {
	for _, p := range s.poolsSnapshot() {
		if n, err := p.Size(); err == nil && n > 0 {
			return false
		}
	}
	return true
}

// run executes the scheduler on the calling goroutine until it is asked to
// stop. x may be nil when the scheduler runs inside a ULT on a stream that
// is not tracked.
func (s *Sched) run(x *Xstream) {
	ctx := &SchedCtx{s: s, x: x}
	if s.impl != nil {
		s.impl.Run(ctx)
		return
	}
	s.basicRun(ctx)
}

// basicRun is the built-in discipline: round-robin over the pools, with
// exponential backoff while idle to keep an empty stream cheap.
func (s *Sched) basicRun(ctx *SchedCtx) {
	const maxBackoff = time.Millisecond
	backoff := time.Microsecond
	for {
		if ctx.HasToStop() {
			return
		}
		ran := false
		for _, p := range s.poolsSnapshot() {
			u, err := p.PopTimeout(0)
			if err != nil || u == nil {
				continue
			}
			if err := runUnit(ctx.x, p, u); err != nil {
				logger().Error().Err(err).Int("sched", s.id).Msg("run unit failed")
			}
			ran = true
		}
		if ran {
			backoff = time.Microsecond
			continue
		}
		time.Sleep(backoff)
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// SchedCtx is the view of the runtime a scheduler loop works against.
type SchedCtx struct {
	s *Sched
	x *Xstream
}

// NumPools returns the number of pools attached to the scheduler.
func (c *SchedCtx) NumPools() int { return c.s.NumPools() }

// Pool returns the i-th attached pool.
func (c *SchedCtx) Pool(i int) (*Pool, error) { return c.s.PoolAt(i) }

// RunUnit executes a popped unit on the calling stream immediately.
func (c *SchedCtx) RunUnit(p *Pool, u Unit) error { return runUnit(c.x, p, u) }

// HasToStop reports whether the loop should exit: the scheduler was asked to
// finish, the stream was halted, or a drain-join completed.
func (c *SchedCtx) HasToStop() bool {
	if c.s.finish.Load() || c.s.freed.Load() {
		return true
	}
	if c.x != nil {
		if c.x.halt.Load() {
			return true
		}
		if c.x.stop.Load() && c.s.idle() {
			return true
		}
	}
	return false
}

// Yield lets the hosting OS thread breathe inside tight custom loops.
func (c *SchedCtx) Yield() { time.Sleep(time.Microsecond) }

// newSchedThread wraps a scheduler as a runnable ULT so it can travel
// through pools like any other unit. When the unit runs, the wrapped
// scheduler takes over the popping stream until its loop returns.
func newSchedThread(s *Sched) *Thread {
	t := NewThread(nil)
	t.sched = s
	t.fn = func() {
		x := t.stream
		var prev *Sched
		if x != nil {
			prev = x.swapSched(s)
			logger().Debug().Int("sched", s.id).Int("rank", x.rank).Msg("scheduler took over stream")
		}
		s.run(x)
		if x != nil {
			x.swapSched(prev)
			logger().Debug().Int("sched", s.id).Int("rank", x.rank).Msg("scheduler returned stream")
		}
	}
	return t
}

// runUnit executes one unit on the calling goroutine and settles the unit
// wrapper afterwards: re-pushed on yield, kept for a suspended thread, freed
// on termination.
func runUnit(x *Xstream, p *Pool, u Unit) error {
	if !p.valid() {
		return api.Errf("ult.runUnit", api.ErrInvalidPool)
	}
	def := p.def
	switch def.UnitType(u) {
	case api.UnitTypeThread, api.UnitTypeSched:
		t := def.UnitThread(u)
		if t == nil {
			return api.Errf("ult.runUnit", api.ErrInvalidUnit)
		}
		t.bindUnit(x, p, u)
		switch t.runOnCaller() {
		case parkYield:
			return p.Push(u)
		case parkBlocked:
			// accounted by SelfSuspend; wrapper stays with the thread
			return nil
		case parkDone:
			ran := u
			def.FreeUnit(&u)
			t.clearUnitIf(ran)
			return nil
		}
		return nil
	case api.UnitTypeTask:
		k := def.UnitTask(u)
		if k == nil {
			return api.Errf("ult.runUnit", api.ErrInvalidUnit)
		}
		k.runOnCaller()
		ran := u
		def.FreeUnit(&u)
		k.clearUnitIf(ran)
		return nil
	default:
		return api.Errf("ult.runUnit", api.ErrInvalidUnit)
	}
}
