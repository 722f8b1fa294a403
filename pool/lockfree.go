// File: pool/lockfree.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Built-in bounded lock-free MPMC pool kind. Removal of a specific queued
// unit cannot be expressed on a ring buffer and is reported as unsupported.
// A full ring applies producer backpressure: Push spins until a consumer
// frees a slot, so size the pool with WithCapacity for the expected burst.

package pool

import (
	"runtime"
	"sync/atomic"

	"github.com/aradilov/ringbuffer"
	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
)

const lockFreeDefaultCapacity = 1024

type lockFreeImpl struct {
	rb   *ringbuffer.MPMC[*BasicUnit]
	live atomic.Int64
}

func (l *lockFreeImpl) InitPool(cfg ult.PoolConfig) error {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = lockFreeDefaultCapacity
	}
	size := uint64(1)
	for size < uint64(capacity) {
		size <<= 1
	}
	l.rb = ringbuffer.NewMPMC[*BasicUnit](size)
	return nil
}

func (l *lockFreeImpl) AccessType() api.Access { return api.AccessMPMC }

func (l *lockFreeImpl) GetSize() int { return int(l.live.Load()) }

// Push spins while the ring is full; the producer is backpressured until a
// consumer makes room.
func (l *lockFreeImpl) Push(u *BasicUnit) {
	u.setInPool(true)
	for !l.rb.Enqueue(u) {
		runtime.Gosched()
	}
	l.live.Add(1)
}

func (l *lockFreeImpl) Pop() (*BasicUnit, bool) {
	u, ok := l.rb.Dequeue()
	if !ok {
		return nil, false
	}
	l.live.Add(-1)
	u.setInPool(false)
	return u, true
}

func (l *lockFreeImpl) Remove(*BasicUnit) error {
	return api.Errf("pool.lockfree.Remove", api.ErrFeatureNA)
}
