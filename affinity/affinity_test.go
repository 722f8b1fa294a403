//go:build linux
// +build linux

// File: affinity/affinity_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package affinity

import (
	"runtime"
	"testing"
)

func TestPinRejectsOutOfRangeCPU(t *testing.T) {
	if err := Pin(-1); err == nil {
		t.Fatal("negative cpu accepted")
	}
	if err := Pin(runtime.NumCPU()); err == nil {
		t.Fatal("out-of-range cpu accepted")
	}
}

func TestPinUnpinRoundTrip(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := Pin(0); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if err := Unpin(); err != nil {
		t.Fatalf("Unpin: %v", err)
	}
}
