// File: pool/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package pool provides the public work-pool surface of hioload-sched: a
// copyable Pool handle over a native pool object, a generic adapter that
// turns any user pool/unit implementation pair into a native callback table,
// and the built-in FIFO, FIFO-wait and lock-free MPMC pool kinds.
//
// Units flow through three owners: the pool while queued, the execution
// stream while running, and the application when explicitly popped or
// removed. The adapter performs no locking of its own; a custom
// implementation must synchronize according to its declared access class.
package pool
