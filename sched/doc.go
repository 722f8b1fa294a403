// File: sched/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package sched exposes schedulers and execution streams: a Scheduler
// selects pools and units to run, a Stream is the OS-level worker driving
// one scheduler loop. Both follow the same scoped-ownership pattern as pool
// handles.
package sched
