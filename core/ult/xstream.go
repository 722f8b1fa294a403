// File: core/ult/xstream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Execution streams: one OS-thread-locked goroutine per stream running a
// scheduler loop, optionally pinned to a CPU.

package ult

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-sched/affinity"
	"github.com/momentics/hioload-sched/api"
)

// XstreamState enumerates the lifecycle of an execution stream.
type XstreamState int32

const (
	StreamRunning XstreamState = iota
	StreamTerminated
)

func (s XstreamState) String() string {
	if s == StreamRunning {
		return "running"
	}
	return "terminated"
}

var streamRanks atomic.Int32

// Xstream is an OS-level execution stream driving a scheduler.
type Xstream struct {
	rank int
	pin  int

	mu    sync.Mutex
	sched *Sched

	stop  atomic.Bool // drain queued work, then exit
	halt  atomic.Bool // exit as soon as the current unit parks
	state atomic.Int32
	done  chan struct{}
}

// NewXstream starts a stream running s. rank < 0 assigns the next free
// rank; pinCPU >= 0 pins the stream's OS thread to that CPU.
func NewXstream(s *Sched, rank int, pinCPU int) (*Xstream, error) {
	if s == nil || s.freed.Load() {
		return nil, api.Errf("ult.NewXstream", api.ErrInvalidSched)
	}
	if rank < 0 {
		rank = int(streamRanks.Add(1)) - 1
	}
	x := &Xstream{
		rank:  rank,
		pin:   pinCPU,
		sched: s,
		done:  make(chan struct{}),
	}
	x.state.Store(int32(StreamRunning))
	go x.loop()
	return x, nil
}

func (x *Xstream) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if x.pin >= 0 {
		if err := affinity.Pin(x.pin); err != nil {
			logger().Warn().Err(err).Int("rank", x.rank).Msg("cpu pin failed")
		}
	}
	logger().Debug().Int("rank", x.rank).Msg("stream started")
	x.current().run(x)
	x.state.Store(int32(StreamTerminated))
	close(x.done)
	logger().Debug().Int("rank", x.rank).Msg("stream stopped")
}

// Rank returns the stream's rank.
func (x *Xstream) Rank() int { return x.rank }

// State returns the stream's lifecycle state.
func (x *Xstream) State() XstreamState { return XstreamState(x.state.Load()) }

// Sched returns the scheduler currently driving the stream.
func (x *Xstream) Sched() *Sched { return x.current() }

func (x *Xstream) current() *Sched {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.sched
}

func (x *Xstream) swapSched(s *Sched) *Sched {
	x.mu.Lock()
	defer x.mu.Unlock()
	prev := x.sched
	x.sched = s
	return prev
}

// Join drains the stream's pools and waits for the scheduler loop to exit.
func (x *Xstream) Join() error {
	if x == nil {
		return api.Errf("ult.Xstream.Join", api.ErrInvalidStream)
	}
	x.stop.Store(true)
	<-x.done
	return nil
}

// Destroy halts the stream without draining and waits for it to exit,
// exactly once semantics are provided by the managed wrapper.
func (x *Xstream) Destroy() error {
	if x == nil {
		return api.Errf("ult.Xstream.Destroy", api.ErrInvalidStream)
	}
	x.halt.Store(true)
	x.stop.Store(true)
	<-x.done
	return nil
}

// IsNull implements the managed resource contract.
func (x *Xstream) IsNull() bool { return x == nil }
