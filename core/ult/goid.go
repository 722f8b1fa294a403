// File: core/ult/goid.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Goroutine-local lookup of the running ULT. The runtime registers the
// thread's goroutine id for the duration of its body so that Self, Yield and
// SelfSuspend work without handle plumbing.

package ult

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

var selfReg sync.Map // goroutine id -> *Thread

// goid parses the current goroutine id from the stack header
// ("goroutine N [running]: ..."). Slow, but only paid at explicit
// registration and yield points, never on the data path.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := buf[:n]
	s = bytes.TrimPrefix(s, []byte("goroutine "))
	if i := bytes.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	id, _ := strconv.ParseUint(string(s), 10, 64)
	return id
}

func registerSelf(t *Thread) { selfReg.Store(goid(), t) }
func unregisterSelf()        { selfReg.Delete(goid()) }

// Self returns the ULT running on the calling goroutine, or nil when the
// caller is not a ULT body.
func Self() *Thread {
	if v, ok := selfReg.Load(goid()); ok {
		return v.(*Thread)
	}
	return nil
}

// SelfID returns the id of the calling ULT, or 0.
func SelfID() uint64 {
	if t := Self(); t != nil {
		return t.id
	}
	return 0
}
