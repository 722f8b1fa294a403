// File: api/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Access classifications, pool kinds and unit types shared by all layers.

package api

// Access declares which execution streams may produce into and consume from
// a pool. The pool implementation, not the runtime, is responsible for
// carrying enough internal synchronization for its declared class.
type Access int32

const (
	// AccessPriv: one stream produces and the same stream consumes.
	AccessPriv Access = iota
	// AccessSPSC: one fixed producer stream, one different fixed consumer stream.
	AccessSPSC
	// AccessMPSC: any stream produces, one fixed stream consumes.
	AccessMPSC
	// AccessSPMC: one fixed stream produces, any stream consumes.
	AccessSPMC
	// AccessMPMC: any stream produces, any stream consumes.
	AccessMPMC
)

func (a Access) String() string {
	switch a {
	case AccessPriv:
		return "priv"
	case AccessSPSC:
		return "spsc"
	case AccessMPSC:
		return "mpsc"
	case AccessSPMC:
		return "spmc"
	case AccessMPMC:
		return "mpmc"
	}
	return "unknown"
}

// Kind selects a built-in pool implementation.
type Kind int32

const (
	// KindFIFO is the default ordered queue.
	KindFIFO Kind = iota
	// KindFIFOWait is a FIFO queue whose pop blocks the consumer stream
	// until a unit arrives or the pool is freed.
	KindFIFOWait
	// KindLockFreeMPMC is a bounded lock-free queue. It does not support
	// removing queued units, and a full queue backpressures producers:
	// push spins until a consumer frees a slot.
	KindLockFreeMPMC
	// KindCustom marks pools created through the generic adapter.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindFIFO:
		return "fifo"
	case KindFIFOWait:
		return "fifo_wait"
	case KindLockFreeMPMC:
		return "lockfree_mpmc"
	case KindCustom:
		return "custom"
	}
	return "unknown"
}

// UnitType classifies a work unit.
type UnitType int32

const (
	// UnitTypeThread is a resumable user-level thread.
	UnitTypeThread UnitType = iota
	// UnitTypeTask is a one-shot, non-resumable deferred job.
	UnitTypeTask
	// UnitTypeSched is a scheduler packaged as a runnable unit.
	UnitTypeSched
	// UnitTypeOther is anything the runtime does not recognize.
	UnitTypeOther
)

func (t UnitType) String() string {
	switch t {
	case UnitTypeThread:
		return "thread"
	case UnitTypeTask:
		return "task"
	case UnitTypeSched:
		return "sched"
	}
	return "other"
}

// PoolStats is a point-in-time snapshot of pool occupancy.
type PoolStats struct {
	// Size counts queued, runnable units.
	Size int
	// Blocked counts units suspended while associated with the pool.
	Blocked int
	// TotalSize is Size plus Blocked.
	TotalSize int
}
