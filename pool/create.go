// File: pool/create.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Creation of pools with built-in ordering disciplines. Built-ins run
// through the same generic adapter as user implementations.

package pool

import (
	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/ult"
	"github.com/momentics/hioload-sched/managed"
)

// CreateBasic builds a pool using a built-in discipline with the requested
// access classification. KindFIFO pops never block; KindFIFOWait pops block
// the consumer until a unit arrives; KindLockFreeMPMC is bounded,
// non-removable and only valid with AccessMPMC.
func CreateBasic(a api.Access, k api.Kind, opts ...Option) (*Scoped, error) {
	cfg := buildConfig(opts)
	var (
		h   *ult.Pool
		err error
	)
	switch k {
	case api.KindFIFO, api.KindFIFOWait:
		def := Def[*fifoImpl, *BasicUnit]{
			New:        newFIFOImpl(a),
			FromThread: NewUnitFromThread,
			FromTask:   NewUnitFromTask,
		}
		h, err = ult.CreatePool(newNativeDef(def), k, cfg)
	case api.KindLockFreeMPMC:
		if a != api.AccessMPMC {
			return nil, api.Errf("pool.CreateBasic", api.ErrInvalidArgument)
		}
		def := Def[*lockFreeImpl, *BasicUnit]{
			New:        func() *lockFreeImpl { return &lockFreeImpl{} },
			FromThread: NewUnitFromThread,
			FromTask:   NewUnitFromTask,
		}
		h, err = ult.CreatePool(newNativeDef(def), k, cfg)
	default:
		return nil, api.Errf("pool.CreateBasic", api.ErrInvalidArgument)
	}
	if err != nil {
		return nil, err
	}
	return managed.Make(Pool{h: h}), nil
}

// CreateFIFO is CreateBasic with the default FIFO kind.
func CreateFIFO(a api.Access, opts ...Option) (*Scoped, error) {
	return CreateBasic(a, api.KindFIFO, opts...)
}
