// File: core/ult/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package ult is the native layer of the hioload-sched runtime: user-level
// threads (ULTs) and one-shot tasks multiplexed over OS-level execution
// streams, fed by work pools with pluggable implementations.
//
// A pool is driven entirely through its PoolDef callback table. The table is
// produced by the pool package's generic adapter, which binds the callbacks
// to one concrete pool/unit implementation pair; this package never inspects
// the implementation beyond those callbacks.
//
// Suspension is strictly cooperative. A running unit gives up its stream
// only at explicit points: Yield, SelfSuspend, or termination. Nothing here
// is preemptive.
package ult
