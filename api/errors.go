// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Structured error type carrying the failing operation, the native status
// code and the call site. All error conditions surface synchronously to the
// caller; nothing is retried or recovered at this layer.

package api

import (
	"fmt"
	"runtime"
)

// Error is the single error type returned by runtime operations.
type Error struct {
	// Op is the operation that failed, e.g. "pool.Pop".
	Op string
	// Code is the native status code.
	Code Status
	// File and Line locate the call site that raised the error.
	File string
	Line int
	// Err optionally wraps an underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	s := fmt.Sprintf("%s returned %s (%s) in %s:%d",
		e.Op, e.Code.Name(), e.Code.Description(), e.File, e.Line)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is matches either another *Error with the same code or a bare Status.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Code == e.Code
	}
	return false
}

// Errf builds an *Error for op with the given code, capturing the caller's
// source location.
func Errf(op string, code Status) *Error {
	_, file, line, _ := runtime.Caller(1)
	return &Error{Op: op, Code: code, File: file, Line: line}
}

// ErrfWrap is Errf with an underlying cause attached.
func ErrfWrap(op string, code Status, err error) *Error {
	_, file, line, _ := runtime.Caller(1)
	return &Error{Op: op, Code: code, File: file, Line: line, Err: err}
}

// CodeOf extracts the status code from err, or OK when err is nil and
// ErrInvalidArgument when err is not a runtime error.
func CodeOf(err error) Status {
	if err == nil {
		return OK
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrInvalidArgument
}
