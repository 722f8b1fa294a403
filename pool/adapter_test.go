// File: pool/adapter_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
	"github.com/momentics/hioload-sched/pool"
)

// countUnit instruments the unit side of the adapter contract.
type countUnit struct {
	t      *ult.Thread
	k      *ult.Task
	inPool bool
	frees  atomic.Int32
}

func (u *countUnit) Type() api.UnitType {
	if u.t != nil {
		return u.t.Type()
	}
	return api.UnitTypeTask
}
func (u *countUnit) Thread() *ult.Thread { return u.t }
func (u *countUnit) Task() *ult.Task     { return u.k }
func (u *countUnit) InPool() bool        { return u.inPool }
func (u *countUnit) FreeUnit()           { u.frees.Add(1) }

// countPool is a mutex FIFO that instruments the pool side: init and close
// calls, plus the config handed to init.
type countPool struct {
	mu         sync.Mutex
	q          []*countUnit
	cfg        ult.PoolConfig
	initCalls  int
	closeCalls int
}

func newCountPool() *countPool { return &countPool{} }

func (p *countPool) InitPool(cfg ult.PoolConfig) error {
	p.initCalls++
	p.cfg = cfg
	return nil
}

func (p *countPool) ClosePool() { p.closeCalls++ }

func (p *countPool) AccessType() api.Access { return api.AccessMPMC }

func (p *countPool) GetSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.q)
}

func (p *countPool) Push(u *countUnit) {
	p.mu.Lock()
	u.inPool = true
	p.q = append(p.q, u)
	p.mu.Unlock()
}

func (p *countPool) Pop() (*countUnit, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.q) == 0 {
		return nil, false
	}
	u := p.q[0]
	p.q = p.q[1:]
	u.inPool = false
	return u, true
}

func (p *countPool) Remove(u *countUnit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, q := range p.q {
		if q == u {
			p.q = append(p.q[:i], p.q[i+1:]...)
			u.inPool = false
			return nil
		}
	}
	return api.Errf("countPool.Remove", api.ErrNotFound)
}

func countDef(cp *countPool) pool.Def[*countPool, *countUnit] {
	return pool.Def[*countPool, *countUnit]{
		New:        func() *countPool { return cp },
		FromThread: func(t *ult.Thread) *countUnit { return &countUnit{t: t} },
		FromTask:   func(k *ult.Task) *countUnit { return &countUnit{k: k} },
	}
}

func TestCreateValidatesDef(t *testing.T) {
	_, err := pool.Create(pool.Def[*countPool, *countUnit]{
		New: func() *countPool { return newCountPool() },
	})
	assert.Equal(t, api.ErrInvalidArgument, api.CodeOf(err))
}

func TestAdapterConfigReachesInit(t *testing.T) {
	cp := newCountPool()
	mp, err := pool.Create(countDef(cp), pool.WithName("custom"), pool.WithCapacity(64))
	require.NoError(t, err)
	defer mp.Close()

	assert.Equal(t, 1, cp.initCalls)
	assert.Equal(t, "custom", cp.cfg.Name)
	assert.Equal(t, 64, cp.cfg.Capacity)

	got, err := mp.Get().GetAccess()
	require.NoError(t, err)
	assert.Equal(t, api.AccessMPMC, got)
}

func TestAdapterFreeExactlyOnce(t *testing.T) {
	// Never used at all.
	cp := newCountPool()
	mp, err := pool.Create(countDef(cp))
	require.NoError(t, err)
	require.NoError(t, mp.Close())
	require.NoError(t, mp.Close())
	assert.Equal(t, 1, cp.closeCalls)

	// Used, then closed through the handle directly.
	cp = newCountPool()
	mp, err = pool.Create(countDef(cp))
	require.NoError(t, err)
	p := mp.Release()
	require.NoError(t, p.MakeTaskDetached(func() {}))
	u, err := pool.Pop[*countUnit](p)
	require.NoError(t, err)
	require.NoError(t, pool.RunUnit(p, u))

	require.NoError(t, p.Destroy())
	assert.Equal(t, api.ErrInvalidPool, api.CodeOf(p.Destroy()))
	assert.Equal(t, 1, cp.closeCalls)
}

func TestAdapterRoundTripIdentity(t *testing.T) {
	cp := newCountPool()
	mp, err := pool.Create(countDef(cp))
	require.NoError(t, err)
	defer mp.Close()
	p := mp.Get()

	const n = 600
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			require.NoError(t, p.MakeThreadDetached(func() {}))
		} else {
			require.NoError(t, p.MakeTaskDetached(func() {}))
		}
	}

	first := make([]*countUnit, 0, n)
	for i := 0; i < n; i++ {
		u, err := pool.Pop[*countUnit](p)
		require.NoError(t, err)
		require.NotNil(t, u)
		if i%2 == 0 {
			require.Equal(t, api.UnitTypeThread, u.Type())
			require.NotNil(t, u.Thread())
		} else {
			require.Equal(t, api.UnitTypeTask, u.Type())
			require.NotNil(t, u.Task())
		}
		first = append(first, u)
	}
	u, err := pool.Pop[*countUnit](p)
	require.NoError(t, err)
	require.Nil(t, u)

	for _, u := range first {
		require.NoError(t, pool.Push(p, u))
		require.True(t, u.InPool())
	}
	for i := 0; i < n; i++ {
		u, err := pool.Pop[*countUnit](p)
		require.NoError(t, err)
		require.Same(t, first[i], u, "unit %d lost its identity across the boundary", i)
		require.False(t, u.InPool())
	}
}

func TestAdapterTimedPop(t *testing.T) {
	cp := newCountPool()
	mp, err := pool.Create(countDef(cp))
	require.NoError(t, err)
	defer mp.Close()
	p := mp.Get()

	// Empty pool: the wait loop keeps polling the implementation until the
	// deadline passes.
	u, err := pool.PopTimeout[*countUnit](p, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, u)

	go func() {
		time.Sleep(5 * time.Millisecond)
		assert.NoError(t, p.MakeTaskDetached(func() {}))
	}()
	u, err = pool.PopTimeout[*countUnit](p, time.Second)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NoError(t, pool.RunUnit(p, u))
}

func TestAdapterFreesWrappersAfterRun(t *testing.T) {
	cp := newCountPool()
	mp, err := pool.Create(countDef(cp))
	require.NoError(t, err)
	defer mp.Close()
	p := mp.Get()

	ran := 0
	require.NoError(t, p.MakeThreadDetached(func() { ran++ }))
	require.NoError(t, p.MakeTaskDetached(func() { ran++ }))

	units := make([]*countUnit, 0, 2)
	for {
		u, err := pool.Pop[*countUnit](p)
		require.NoError(t, err)
		if u == nil {
			break
		}
		units = append(units, u)
		require.NoError(t, pool.RunUnit(p, u))
	}

	assert.Equal(t, 2, ran)
	require.Len(t, units, 2)
	for _, u := range units {
		assert.Equal(t, int32(1), u.frees.Load())
	}
}
