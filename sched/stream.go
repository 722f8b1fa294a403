// File: sched/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Execution stream handle: the OS-level worker a scheduler loop runs on.

package sched

import (
	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
	"github.com/momentics/hioload-sched/managed"
	"github.com/momentics/hioload-sched/pool"
)

// Stream is a handle to a native execution stream. The zero value is null.
type Stream struct {
	x *ult.Xstream
	// ownedSched, when set, is a private scheduler destroyed together
	// with the stream (NewStreamBasic).
	ownedSched *ult.Sched
}

// ScopedStream owns a Stream; closing it halts the stream and waits for
// the scheduler loop to exit.
type ScopedStream = managed.Managed[Stream]

// StreamOption adjusts stream creation.
type StreamOption func(o *streamOptions)

type streamOptions struct {
	rank int
	pin  int
}

// WithRank assigns an explicit rank instead of the next free one.
func WithRank(rank int) StreamOption {
	return func(o *streamOptions) { o.rank = rank }
}

// WithPinCPU pins the stream's OS thread to a logical CPU.
func WithPinCPU(cpu int) StreamOption {
	return func(o *streamOptions) { o.pin = cpu }
}

// NewStream starts an execution stream driving the given scheduler. The
// scheduler must stay alive until the stream has been joined or closed.
func NewStream(s Scheduler, opts ...StreamOption) (*ScopedStream, error) {
	if s.IsNull() {
		return nil, api.Errf("sched.NewStream", api.ErrInvalidSched)
	}
	o := streamOptions{rank: -1, pin: -1}
	for _, opt := range opts {
		opt(&o)
	}
	x, err := ult.NewXstream(s.NativeHandle(), o.rank, o.pin)
	if err != nil {
		return nil, err
	}
	return managed.Make(Stream{x: x}), nil
}

// NewStreamBasic starts a stream with a private built-in scheduler over the
// given pools. The scheduler's lifetime is tied to the stream: it is
// destroyed when the stream handle is destroyed.
func NewStreamBasic(pools []pool.Pool, opts ...StreamOption) (*ScopedStream, error) {
	ms, err := New(pools...)
	if err != nil {
		return nil, err
	}
	sc := ms.Release() // ownership moves onto the stream handle
	o := streamOptions{rank: -1, pin: -1}
	for _, opt := range opts {
		opt(&o)
	}
	x, err := ult.NewXstream(sc.NativeHandle(), o.rank, o.pin)
	if err != nil {
		_ = sc.Destroy()
		return nil, err
	}
	return managed.Make(Stream{x: x, ownedSched: sc.NativeHandle()}), nil
}

// FromNativeStream wraps an existing native stream without taking ownership.
func FromNativeStream(x *ult.Xstream) Stream { return Stream{x: x} }

// NativeHandle exposes the underlying native stream.
func (st Stream) NativeHandle() *ult.Xstream { return st.x }

// IsNull reports whether the handle refers to nothing.
func (st Stream) IsNull() bool { return st.x == nil }

// Rank returns the stream's rank.
func (st Stream) Rank() (int, error) {
	if st.x == nil {
		return 0, api.Errf("sched.Stream.Rank", api.ErrInvalidStream)
	}
	return st.x.Rank(), nil
}

// State returns the stream's lifecycle state.
func (st Stream) State() (ult.XstreamState, error) {
	if st.x == nil {
		return 0, api.Errf("sched.Stream.State", api.ErrInvalidStream)
	}
	return st.x.State(), nil
}

// Join drains the stream's pools and waits for its scheduler loop to exit.
func (st Stream) Join() error {
	if st.x == nil {
		return api.Errf("sched.Stream.Join", api.ErrInvalidStream)
	}
	return st.x.Join()
}

// Destroy halts the stream without draining; used by the ScopedStream
// owner.
func (st Stream) Destroy() error {
	if st.x == nil {
		return api.Errf("sched.Stream.Destroy", api.ErrInvalidStream)
	}
	err := st.x.Destroy()
	if st.ownedSched != nil {
		if derr := st.ownedSched.Destroy(); err == nil {
			err = derr
		}
	}
	return err
}
