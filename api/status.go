// File: api/status.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Native status codes. Every failing runtime call is reported with one of
// these; Name and Description feed the structured error text.

package api

// Status is the result code of a native runtime call.
type Status int32

const (
	OK Status = iota
	ErrMem
	ErrInvalidArgument
	ErrInvalidPool
	ErrInvalidUnit
	ErrInvalidThread
	ErrInvalidTask
	ErrInvalidSched
	ErrInvalidStream
	ErrInvalidState
	ErrFeatureNA
	ErrNotFound
	ErrPoolBusy
	ErrPoolEmpty
)

// Name returns the symbolic name of the status code.
func (s Status) Name() string {
	switch s {
	case OK:
		return "OK"
	case ErrMem:
		return "ERR_MEM"
	case ErrInvalidArgument:
		return "ERR_INVALID_ARGUMENT"
	case ErrInvalidPool:
		return "ERR_INVALID_POOL"
	case ErrInvalidUnit:
		return "ERR_INVALID_UNIT"
	case ErrInvalidThread:
		return "ERR_INVALID_THREAD"
	case ErrInvalidTask:
		return "ERR_INVALID_TASK"
	case ErrInvalidSched:
		return "ERR_INVALID_SCHED"
	case ErrInvalidStream:
		return "ERR_INVALID_STREAM"
	case ErrInvalidState:
		return "ERR_INVALID_STATE"
	case ErrFeatureNA:
		return "ERR_FEATURE_NA"
	case ErrNotFound:
		return "ERR_NOT_FOUND"
	case ErrPoolBusy:
		return "ERR_POOL_BUSY"
	case ErrPoolEmpty:
		return "ERR_POOL_EMPTY"
	}
	return "ERR_UNKNOWN"
}

// Description returns a human-readable explanation of the status code.
func (s Status) Description() string {
	switch s {
	case OK:
		return "success"
	case ErrMem:
		return "native allocation failed"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrInvalidPool:
		return "pool handle is null or already freed"
	case ErrInvalidUnit:
		return "unit does not belong to this pool type"
	case ErrInvalidThread:
		return "thread handle is null or in the wrong state"
	case ErrInvalidTask:
		return "task handle is null or in the wrong state"
	case ErrInvalidSched:
		return "scheduler handle is null or already freed"
	case ErrInvalidStream:
		return "execution stream handle is null or terminated"
	case ErrInvalidState:
		return "operation not permitted in the current state"
	case ErrFeatureNA:
		return "operation not supported by this pool kind"
	case ErrNotFound:
		return "unit is not present in the pool"
	case ErrPoolBusy:
		return "pool is still attached to a scheduler"
	case ErrPoolEmpty:
		return "pool has no runnable unit"
	}
	return "unknown error"
}
