// File: pool/fifo.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Built-in FIFO pool implementation over a ring-backed queue. Removal is
// tombstone-based: eapache/queue has no delete-at-index, so removed units
// are marked dead and skipped at pop time.

package pool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
)

// spinLock is a CAS spinlock with exponential backoff, cheaper than a mutex
// for the short critical sections of SPSC traffic.
type spinLock uint32

const spinMaxBackoff = 64

func (s *spinLock) Lock() {
	backoff := 1
	for !atomic.CompareAndSwapUint32((*uint32)(s), 0, 1) {
		for i := 0; i < backoff; i++ {
			runtime.Gosched()
		}
		if backoff < spinMaxBackoff {
			backoff <<= 1
		}
	}
}

func (s *spinLock) Unlock() {
	atomic.StoreUint32((*uint32)(s), 0)
}

// nopLock is used for priv pools: one stream both produces and consumes, so
// the queue needs no synchronization.
type nopLock struct{}

func (nopLock) Lock()   {}
func (nopLock) Unlock() {}

// lockFor picks the synchronization matching a declared access class.
func lockFor(a api.Access) sync.Locker {
	switch a {
	case api.AccessPriv:
		return nopLock{}
	case api.AccessSPSC:
		return new(spinLock)
	default:
		return &sync.Mutex{}
	}
}

// fifoImpl is the built-in FIFO discipline.
type fifoImpl struct {
	access api.Access
	lk     sync.Locker
	q      *queue.Queue
	dead   map[*BasicUnit]struct{}
	live   int
}

func newFIFOImpl(a api.Access) func() *fifoImpl {
	return func() *fifoImpl {
		return &fifoImpl{access: a, lk: lockFor(a)}
	}
}

func (f *fifoImpl) InitPool(ult.PoolConfig) error {
	f.q = queue.New()
	f.dead = make(map[*BasicUnit]struct{})
	return nil
}

func (f *fifoImpl) AccessType() api.Access { return f.access }

func (f *fifoImpl) GetSize() int {
	f.lk.Lock()
	defer f.lk.Unlock()
	return f.live
}

func (f *fifoImpl) Push(u *BasicUnit) {
	f.lk.Lock()
	f.q.Add(u)
	u.setInPool(true)
	f.live++
	f.lk.Unlock()
}

func (f *fifoImpl) Pop() (*BasicUnit, bool) {
	f.lk.Lock()
	defer f.lk.Unlock()
	for f.q.Length() > 0 {
		u := f.q.Remove().(*BasicUnit)
		if _, dead := f.dead[u]; dead {
			delete(f.dead, u)
			continue
		}
		u.setInPool(false)
		f.live--
		return u, true
	}
	return nil, false
}

func (f *fifoImpl) Remove(u *BasicUnit) error {
	f.lk.Lock()
	defer f.lk.Unlock()
	if !u.InPool() {
		return api.Errf("pool.fifo.Remove", api.ErrNotFound)
	}
	if _, dead := f.dead[u]; dead {
		return api.Errf("pool.fifo.Remove", api.ErrNotFound)
	}
	f.dead[u] = struct{}{}
	u.setInPool(false)
	f.live--
	return nil
}

func (f *fifoImpl) ClosePool() {
	f.lk.Lock()
	f.q = nil
	f.dead = nil
	f.live = 0
	f.lk.Unlock()
}
