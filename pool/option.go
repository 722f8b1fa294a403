// File: pool/option.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Functional options for pool creation.

package pool

import "github.com/momentics/hioload-sched/core/ult"

// Option adjusts pool creation parameters.
type Option func(cfg *ult.PoolConfig)

// WithName names the pool for logging and debugging.
func WithName(name string) Option {
	return func(cfg *ult.PoolConfig) {
		cfg.Name = name
	}
}

// WithCapacity bounds the built-in lock-free pool kind. Rounded up to a
// power of two; ignored by unbounded kinds.
func WithCapacity(n int) Option {
	return func(cfg *ult.PoolConfig) {
		cfg.Capacity = n
	}
}

func buildConfig(opts []Option) ult.PoolConfig {
	var cfg ult.PoolConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
