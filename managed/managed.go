// File: managed/managed.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scoped single-owner wrapper for native runtime resources. Exactly one
// wrapper owns a resource at a time; Close destroys it exactly once unless
// ownership was handed away with Release or Move.

package managed

import "sync/atomic"

// Resource is any native object the wrapper can own.
type Resource interface {
	// Destroy releases the underlying native object.
	Destroy() error
	// IsNull reports whether the handle refers to nothing.
	IsNull() bool
}

// Managed owns a Resource. The zero value owns nothing. Managed values must
// not be copied; pass the pointer returned by Make around instead.
type Managed[T Resource] struct {
	obj   T
	owned atomic.Bool
}

// Make takes ownership of obj.
func Make[T Resource](obj T) *Managed[T] {
	m := &Managed[T]{obj: obj}
	if !obj.IsNull() {
		m.owned.Store(true)
	}
	return m
}

// Get borrows the resource without transferring ownership.
func (m *Managed[T]) Get() T { return m.obj }

// Owned reports whether this wrapper will destroy the resource on Close.
func (m *Managed[T]) Owned() bool { return m.owned.Load() }

// Release hands the resource to the caller; the wrapper no longer destroys
// it. Subsequent Close calls are no-ops.
func (m *Managed[T]) Release() T {
	m.owned.Store(false)
	return m.obj
}

// Move transfers ownership into a fresh wrapper and empties the source.
func (m *Managed[T]) Move() *Managed[T] {
	next := &Managed[T]{obj: m.obj}
	if m.owned.CompareAndSwap(true, false) {
		next.owned.Store(true)
	}
	return next
}

// Close destroys the owned resource, exactly once. Closing an unowned or
// already-closed wrapper is a no-op.
func (m *Managed[T]) Close() error {
	if !m.owned.CompareAndSwap(true, false) {
		return nil
	}
	if m.obj.IsNull() {
		return nil
	}
	return m.obj.Destroy()
}
