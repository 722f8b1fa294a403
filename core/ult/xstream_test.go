// File: core/ult/xstream_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ult

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-sched/api"
)

func TestXstreamDrainJoin(t *testing.T) {
	p, _ := mustPool(t, api.KindCustom)

	s, err := NewSched(nil, p)
	if err != nil {
		t.Fatal(err)
	}
	x, err := NewXstream(s, -1, -1)
	if err != nil {
		t.Fatal(err)
	}

	const n = 64
	var ran atomic.Int64
	for i := 0; i < n; i++ {
		if err := p.CreateTaskDetached(func() { ran.Add(1) }); err != nil {
			t.Fatal(err)
		}
	}

	if err := x.Join(); err != nil {
		t.Fatal(err)
	}
	if got := ran.Load(); got != n {
		t.Fatalf("ran %d of %d tasks", got, n)
	}
	if x.State() != StreamTerminated {
		t.Fatalf("stream state = %v", x.State())
	}
	if err := s.Destroy(); err != nil {
		t.Fatal(err)
	}
	if err := p.Free(); err != nil {
		t.Fatal(err)
	}
}

func TestXstreamRanks(t *testing.T) {
	p, _ := mustPool(t, api.KindCustom)
	defer p.Free()

	s, err := NewSched(nil, p)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()

	x, err := NewXstream(s, 7, -1)
	if err != nil {
		t.Fatal(err)
	}
	if x.Rank() != 7 {
		t.Fatalf("rank = %d, want 7", x.Rank())
	}
	if err := x.Join(); err != nil {
		t.Fatal(err)
	}
}

// dropSched pops one unit per turn and exits when asked to.
type dropSched struct {
	turns atomic.Int64
}

func (d *dropSched) Init(*SchedCtx) error { return nil }

func (d *dropSched) Run(ctx *SchedCtx) {
	for !ctx.HasToStop() {
		d.turns.Add(1)
		p, err := ctx.Pool(0)
		if err != nil {
			return
		}
		u, err := p.PopTimeout(0)
		if err != nil || u == nil {
			ctx.Yield()
			continue
		}
		if err := ctx.RunUnit(p, u); err != nil {
			return
		}
	}
}

func TestCustomSchedImplDrivesUnits(t *testing.T) {
	p, _ := mustPool(t, api.KindCustom)

	impl := &dropSched{}
	s, err := NewSched(impl, p)
	if err != nil {
		t.Fatal(err)
	}
	x, err := NewXstream(s, -1, -1)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	const n = 16
	wg.Add(n)
	for i := 0; i < n; i++ {
		if err := p.CreateThreadDetached(func() {
			Yield()
			wg.Done()
		}); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()

	if err := x.Join(); err != nil {
		t.Fatal(err)
	}
	if impl.turns.Load() == 0 {
		t.Fatal("custom loop never ran")
	}
	if err := s.Destroy(); err != nil {
		t.Fatal(err)
	}
	if err := p.Free(); err != nil {
		t.Fatal(err)
	}
}

func TestReviveUnderRunningStream(t *testing.T) {
	p, _ := mustPool(t, api.KindCustom)

	s, err := NewSched(nil, p)
	if err != nil {
		t.Fatal(err)
	}
	x, err := NewXstream(s, -1, -1)
	if err != nil {
		t.Fatal(err)
	}

	// Join unblocks before the terminal park is consumed by the runner, so
	// each revival races the previous generation's handoff.
	const revives = 200
	var runs atomic.Int64
	body := func() { runs.Add(1) }

	th, err := p.CreateThread(body)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < revives; i++ {
		if err := th.Join(); err != nil {
			t.Fatal(err)
		}
		if err := p.ReviveThread(th, body); err != nil {
			t.Fatal(err)
		}
	}
	if err := th.Join(); err != nil {
		t.Fatal(err)
	}
	if got := runs.Load(); got != revives+1 {
		t.Fatalf("thread ran %d times, want %d", got, revives+1)
	}

	runs.Store(0)
	k, err := p.CreateTask(body)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < revives; i++ {
		if err := k.Join(); err != nil {
			t.Fatal(err)
		}
		if err := p.ReviveTask(k, body); err != nil {
			t.Fatal(err)
		}
	}
	if err := k.Join(); err != nil {
		t.Fatal(err)
	}
	if got := runs.Load(); got != revives+1 {
		t.Fatalf("task ran %d times, want %d", got, revives+1)
	}

	if err := x.Join(); err != nil {
		t.Fatal(err)
	}
	if err := s.Destroy(); err != nil {
		t.Fatal(err)
	}
	if err := p.Free(); err != nil {
		t.Fatal(err)
	}
}

func TestFinishStopsLoop(t *testing.T) {
	p, _ := mustPool(t, api.KindCustom)
	defer p.Free()

	s, err := NewSched(nil, p)
	if err != nil {
		t.Fatal(err)
	}
	x, err := NewXstream(s, -1, -1)
	if err != nil {
		t.Fatal(err)
	}

	s.Finish()
	select {
	case <-x.done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after Finish")
	}
	if err := s.Destroy(); err != nil {
		t.Fatal(err)
	}
}
