// File: core/ult/log.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime debug logging. Disabled (Nop) unless the embedding application
// installs a logger; the hot paths only pay for an atomic load.

package ult

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var loggerPtr atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	loggerPtr.Store(&nop)
}

// SetLogger installs the logger used for runtime lifecycle events
// (pool create/free, stream start/stop, scheduler switches).
func SetLogger(l zerolog.Logger) {
	loggerPtr.Store(&l)
}

func logger() *zerolog.Logger {
	return loggerPtr.Load()
}
