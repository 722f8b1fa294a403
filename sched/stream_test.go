// File: sched/stream_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sched_test

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
	"github.com/momentics/hioload-sched/sched"
)

func TestStreamDrainsDetachedWorkOnce(t *testing.T) {
	mp, err := pool.CreateFIFO(api.AccessMPSC)
	require.NoError(t, err)
	p := mp.Get()

	st, err := sched.NewStreamBasic([]pool.Pool{p})
	require.NoError(t, err)

	const n = 100
	counts := make([]atomic.Int32, n)
	for i := 0; i < n; i++ {
		i := i
		if i%2 == 0 {
			require.NoError(t, p.MakeTaskDetached(func() { counts[i].Add(1) }))
		} else {
			require.NoError(t, p.MakeThreadDetached(func() { counts[i].Add(1) }))
		}
	}

	require.NoError(t, st.Get().Join())
	for i := range counts {
		assert.Equal(t, int32(1), counts[i].Load(), "unit %d", i)
	}

	size, err := p.Size()
	require.NoError(t, err)
	assert.Zero(t, size)

	require.NoError(t, st.Close())
	require.NoError(t, mp.Close())
}

func TestMultiStreamSharedPool(t *testing.T) {
	mp, err := pool.CreateFIFO(api.AccessMPMC, pool.WithName("shared"))
	require.NoError(t, err)
	p := mp.Get()

	streams := make([]*sched.ScopedStream, 0, 4)
	for i := 0; i < 4; i++ {
		st, err := sched.NewStreamBasic([]pool.Pool{p})
		require.NoError(t, err)
		streams = append(streams, st)
	}

	const n = 200
	var ran atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, p.MakeTaskDetached(func() {
			ran.Add(1)
			wg.Done()
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(n), ran.Load())

	for _, st := range streams {
		require.NoError(t, st.Get().Join())
		require.NoError(t, st.Close())
	}
	require.NoError(t, mp.Close())
}

func TestAddSchedTakesOverStream(t *testing.T) {
	mp1, err := pool.CreateFIFO(api.AccessMPSC, pool.WithName("host"))
	require.NoError(t, err)
	p1 := mp1.Get()
	st, err := sched.NewStreamBasic([]pool.Pool{p1})
	require.NoError(t, err)

	mp2, err := pool.CreateFIFO(api.AccessMPSC, pool.WithName("guest"))
	require.NoError(t, err)
	p2 := mp2.Get()
	ms2, err := sched.New(p2)
	require.NoError(t, err)

	// Work queued on the guest pool sits idle: no stream drives it yet.
	var guestRan atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p2.MakeTaskDetached(func() { guestRan.Add(1) }))
	}
	time.Sleep(10 * time.Millisecond)
	require.Zero(t, guestRan.Load())

	// Hand the guest scheduler to the host stream as a work unit.
	require.NoError(t, p1.AddSched(ms2.Get().NativeHandle()))
	assert.Eventually(t, func() bool { return guestRan.Load() == 5 },
		2*time.Second, time.Millisecond)

	// Give the stream back to the host scheduler.
	require.NoError(t, ms2.Get().Finish())
	var hostRan atomic.Int32
	require.NoError(t, p1.MakeTaskDetached(func() { hostRan.Add(1) }))
	assert.Eventually(t, func() bool { return hostRan.Load() == 1 },
		2*time.Second, time.Millisecond)

	require.NoError(t, st.Get().Join())
	require.NoError(t, st.Close())
	require.NoError(t, ms2.Close())
	require.NoError(t, mp2.Close())
	require.NoError(t, mp1.Close())
}

func TestStreamBasicOwnsItsScheduler(t *testing.T) {
	mp, err := pool.CreateFIFO(api.AccessMPSC)
	require.NoError(t, err)

	st, err := sched.NewStreamBasic([]pool.Pool{mp.Get()})
	require.NoError(t, err)
	require.NoError(t, st.Get().Join())
	require.NoError(t, st.Close())

	// The private scheduler went down with the stream, so the pool is free
	// to be destroyed.
	require.NoError(t, mp.Close())
}

func TestPoolBusyWhileSchedulerAttached(t *testing.T) {
	mp, err := pool.CreateFIFO(api.AccessMPSC)
	require.NoError(t, err)
	p := mp.Get()

	ms, err := sched.New(p)
	require.NoError(t, err)

	assert.Equal(t, api.ErrPoolBusy, api.CodeOf(p.Destroy()))

	require.NoError(t, ms.Close())
	require.NoError(t, mp.Close())
}

func TestAttachDetachPool(t *testing.T) {
	mp1, err := pool.CreateFIFO(api.AccessMPSC)
	require.NoError(t, err)
	mp2, err := pool.CreateFIFO(api.AccessMPSC)
	require.NoError(t, err)

	ms, err := sched.New(mp1.Get())
	require.NoError(t, err)
	s := ms.Get()

	n, err := s.NumPools()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.AttachPool(mp2.Get()))
	n, err = s.NumPools()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DetachPool(mp1.Get()))
	assert.Equal(t, api.ErrNotFound, api.CodeOf(s.DetachPool(mp1.Get())))

	require.NoError(t, ms.Close())
	require.NoError(t, mp1.Close())
	require.NoError(t, mp2.Close())
}

func TestFinishStopsStream(t *testing.T) {
	mp, err := pool.CreateFIFO(api.AccessMPSC)
	require.NoError(t, err)

	ms, err := sched.New(mp.Get())
	require.NoError(t, err)
	st, err := sched.NewStream(ms.Get(), sched.WithRank(11))
	require.NoError(t, err)

	rank, err := st.Get().Rank()
	require.NoError(t, err)
	assert.Equal(t, 11, rank)

	require.NoError(t, ms.Get().Finish())
	require.NoError(t, st.Get().Join())
	state, err := st.Get().State()
	require.NoError(t, err)
	assert.Equal(t, ult.StreamTerminated, state)

	require.NoError(t, st.Close())
	require.NoError(t, ms.Close())
	require.NoError(t, mp.Close())
}

func TestNullSchedulerAndStream(t *testing.T) {
	var s sched.Scheduler
	assert.True(t, s.IsNull())
	_, err := s.NumPools()
	assert.Equal(t, api.ErrInvalidSched, api.CodeOf(err))
	_, err = sched.NewStream(s)
	assert.Equal(t, api.ErrInvalidSched, api.CodeOf(err))

	var st sched.Stream
	assert.True(t, st.IsNull())
	assert.Equal(t, api.ErrInvalidStream, api.CodeOf(st.Join()))
}
