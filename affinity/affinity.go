// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral API for CPU affinity. Platform-specific implementations
// live in separate files guarded by build tags. Callers must have locked the
// goroutine to its OS thread first; pinning an unlocked goroutine pins
// whatever thread it happens to be on.

package affinity

// Pin binds the current OS thread to a single logical CPU.
// On unsupported platforms returns an error.
func Pin(cpuID int) error {
	return pinPlatform(cpuID)
}

// Unpin removes the single-CPU restriction from the current OS thread.
func Unpin() error {
	return unpinPlatform()
}
