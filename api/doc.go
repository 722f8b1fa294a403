// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package api declares the shared contracts of the hioload-sched runtime:
// pool access classifications, built-in pool kinds, work unit types, native
// status codes and the structured error type every fallible operation
// returns.
//
// The package is intentionally dependency-free. Concrete behavior lives in
// core/ult (the native runtime layer) and in the pool, sched and managed
// packages built on top of it.
package api
