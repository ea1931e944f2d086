package instance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/five82/panels/internal/catalog"
)

func TestAlwaysFiresWhileHidden(t *testing.T) {
	h := newHarness(t, 3000)
	in := h.instance(t, "main", func(o *Options) {
		o.Sequence = SequenceRandom
		o.Firing = FireAlways
		o.UpdateInterval = 1000 * time.Millisecond
	})
	mustStart(t, in)
	in.Scheduler.Suspend()

	h.clk.Advance(1000 * time.Millisecond)

	_, byIndex := h.cat.calls()
	if len(byIndex) != 1 {
		t.Fatalf("index fetches = %v, want one random advance", byIndex)
	}
	if n := len(h.rec.ofKind(ItemUpdated)); n != 2 {
		t.Fatalf("ItemUpdated count = %d, want 2", n)
	}
	if n := h.clk.PendingCount(); n != 1 {
		t.Fatalf("pending timers = %d, want 1", n)
	}
}

func TestOnlyHiddenDefersUntilSuspend(t *testing.T) {
	h := newHarness(t, 100)
	in := h.instance(t, "main", func(o *Options) {
		o.Initial = InitialPosition{Kind: PositionFirst}
		o.Sequence = SequenceDefault
		o.Firing = FireOnlyHidden
		o.UpdateInterval = time.Second
	})
	mustStart(t, in)

	h.clk.Advance(time.Second)
	if got := currentIndex(t, in); got != 1 {
		t.Fatalf("current after visible tick = %d, want 1", got)
	}
	if p := in.Scheduler.Phase(); p != PhaseDeferred {
		t.Fatalf("Phase() = %s, want deferred", p)
	}
	if n := h.clk.PendingCount(); n != 0 {
		t.Fatalf("pending timers = %d, want 0 while deferred", n)
	}

	in.Scheduler.Suspend()
	if got := currentIndex(t, in); got != 2 {
		t.Fatalf("current after suspend = %d, want 2", got)
	}
	if p := in.Scheduler.Phase(); p != PhaseArmed {
		t.Fatalf("Phase() = %s, want armed", p)
	}

	h.clk.Advance(time.Second)
	if got := currentIndex(t, in); got != 3 {
		t.Fatalf("current after hidden tick = %d, want 3", got)
	}
}

func TestOnlyVisibleDefersUntilResume(t *testing.T) {
	h := newHarness(t, 100)
	in := h.instance(t, "main", func(o *Options) {
		o.Initial = InitialPosition{Kind: PositionIndex, Index: 50}
		o.Sequence = SequenceReverse
		o.Firing = FireOnlyVisible
		o.UpdateInterval = time.Minute
	})
	mustStart(t, in)
	in.Scheduler.Suspend()

	h.clk.Advance(time.Minute)
	if got := currentIndex(t, in); got != 50 {
		t.Fatalf("current after hidden tick = %d, want 50", got)
	}
	in.Scheduler.Resume()
	if got := currentIndex(t, in); got != 49 {
		t.Fatalf("current after resume = %d, want 49", got)
	}
	if n := h.clk.PendingCount(); n != 1 {
		t.Fatalf("pending timers = %d, want 1", n)
	}
}

func TestDeferredTickIsHonoredOnce(t *testing.T) {
	h := newHarness(t, 100)
	in := h.instance(t, "main", func(o *Options) {
		o.Initial = InitialPosition{Kind: PositionFirst}
		o.Sequence = SequenceDefault
		o.Firing = FireOnlyHidden
		o.UpdateInterval = time.Second
	})
	mustStart(t, in)
	h.clk.Advance(time.Second)

	in.Scheduler.Suspend()
	in.Scheduler.Resume()
	in.Scheduler.Suspend()

	if got := currentIndex(t, in); got != 2 {
		t.Fatalf("current = %d, want exactly one deferred advance to 2", got)
	}
}

func TestExplicitNavigationRestartsInterval(t *testing.T) {
	h := newHarness(t, 100)
	in := h.instance(t, "main", func(o *Options) {
		o.Initial = InitialPosition{Kind: PositionFirst}
		o.Sequence = SequenceDefault
		o.UpdateInterval = time.Second
	})
	mustStart(t, in)

	h.clk.Advance(600 * time.Millisecond)
	if err := in.Navigator.Goto(context.Background(), 10); err != nil {
		t.Fatalf("Goto returned error: %v", err)
	}
	h.clk.Advance(600 * time.Millisecond)
	if got := currentIndex(t, in); got != 10 {
		t.Fatalf("current = %d, want 10 before the restarted interval", got)
	}
	h.clk.Advance(400 * time.Millisecond)
	if got := currentIndex(t, in); got != 11 {
		t.Fatalf("current = %d, want 11 after the restarted interval", got)
	}
}

func TestRepeatedArmingLeavesOneTimer(t *testing.T) {
	h := newHarness(t, 100)
	in := h.instance(t, "main", nil)
	ctx := context.Background()

	mustStart(t, in)
	for i := 1; i <= 5; i++ {
		_ = in.Navigator.Goto(ctx, i)
		in.Scheduler.Suspend()
		in.Scheduler.Resume()
	}
	if n := h.clk.PendingCount(); n != 1 {
		t.Fatalf("pending timers = %d, want 1", n)
	}
}

func TestDisabledIntervalNeverArms(t *testing.T) {
	h := newHarness(t, 100)
	in := h.instance(t, "main", func(o *Options) { o.UpdateInterval = 0 })

	mustStart(t, in)
	in.Scheduler.Suspend()
	in.Scheduler.Resume()
	if n := h.clk.PendingCount(); n != 0 {
		t.Fatalf("pending timers = %d, want 0", n)
	}
	if p := in.Scheduler.Phase(); p != PhaseIdle {
		t.Fatalf("Phase() = %s, want idle", p)
	}
}

func TestTickRearmsAfterFailedAdvance(t *testing.T) {
	h := newHarness(t, 100)
	in := h.instance(t, "main", func(o *Options) {
		o.Initial = InitialPosition{Kind: PositionFirst}
		o.Sequence = SequenceDefault
		o.UpdateInterval = time.Second
	})
	mustStart(t, in)
	h.cat.setIndexErr(2, &catalog.HTTPError{Status: 503, Path: "/2/info.0.json"})

	h.clk.Advance(time.Second)
	if got := currentIndex(t, in); got != 1 {
		t.Fatalf("current = %d, want 1 after failed advance", got)
	}
	if n := len(h.rec.ofKind(FetchError)); n != 1 {
		t.Fatalf("FetchError count = %d, want 1", n)
	}
	if n := h.clk.PendingCount(); n != 1 {
		t.Fatalf("pending timers = %d, want 1 after failure", n)
	}

	h.cat.setIndexErr(2, nil)
	h.clk.Advance(time.Second)
	if got := currentIndex(t, in); got != 2 {
		t.Fatalf("current = %d, want 2 after retry", got)
	}
}

func TestFailedStartRetriesOnTick(t *testing.T) {
	h := newHarness(t, 77)
	h.cat.setLatestErr(errors.New("dns failure"))
	in := h.instance(t, "main", func(o *Options) { o.UpdateInterval = time.Hour })

	if err := in.Start(context.Background()); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("Start error = %v, want ErrCatalogUnavailable", err)
	}
	if n := h.clk.PendingCount(); n != 1 {
		t.Fatalf("pending timers = %d, want 1 after failed start", n)
	}

	h.cat.setLatestErr(nil)
	h.clk.Advance(time.Hour)
	if got := currentIndex(t, in); got != 77 {
		t.Fatalf("current = %d, want latest 77 after retried start", got)
	}
}

func TestSequencePoliciesDriveAutoAdvance(t *testing.T) {
	tests := []struct {
		sequence SequencePolicy
		want     int
	}{
		{SequenceDefault, 11},
		{SequenceReverse, 9},
		{SequenceLatest, 40},
	}
	for _, tt := range tests {
		t.Run(string(tt.sequence), func(t *testing.T) {
			h := newHarness(t, 40)
			in := h.instance(t, "main", func(o *Options) {
				o.Initial = InitialPosition{Kind: PositionIndex, Index: 10}
				o.Sequence = tt.sequence
				o.UpdateInterval = time.Second
			})
			mustStart(t, in)
			h.clk.Advance(time.Second)
			if got := currentIndex(t, in); got != tt.want {
				t.Fatalf("current = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSchedulerStop(t *testing.T) {
	h := newHarness(t, 10)
	in := h.instance(t, "main", nil)
	mustStart(t, in)

	in.Scheduler.Stop()
	if n := h.clk.PendingCount(); n != 0 {
		t.Fatalf("pending timers = %d, want 0 after Stop", n)
	}
	h.clk.Advance(2 * time.Hour)
	if n := len(h.rec.ofKind(ItemUpdated)); n != 1 {
		t.Fatalf("ItemUpdated count = %d, want no advance after Stop", n)
	}
}

func TestTickInFlightDuringStop(t *testing.T) {
	tests := []struct {
		name        string
		stop        bool
		wantPending int
	}{
		{"stopped", true, 0},
		{"running", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 10)
			in := h.instance(t, "main", func(o *Options) {
				o.Initial = InitialPosition{Kind: PositionIndex, Index: 4}
				o.UpdateInterval = time.Minute
			})
			mustStart(t, in)

			h.cat.mu.Lock()
			h.cat.gate = make(chan struct{})
			h.cat.entered = make(chan int, 1)
			gate, entered := h.cat.gate, h.cat.entered
			h.cat.mu.Unlock()

			done := make(chan struct{})
			go func() {
				h.clk.Advance(time.Minute)
				close(done)
			}()
			if n := <-entered; n != 5 {
				t.Fatalf("tick fetched %d, want 5", n)
			}
			if tt.stop {
				in.Scheduler.Stop()
			}
			close(gate)
			if !tt.stop {
				h.clk.WaitForTimers(1)
			}
			<-done

			if got := currentIndex(t, in); got != 5 {
				t.Fatalf("current = %d, want 5", got)
			}
			if n := h.clk.PendingCount(); n != tt.wantPending {
				t.Fatalf("pending timers = %d, want %d", n, tt.wantPending)
			}
			if tt.stop {
				in.Scheduler.Arm()
				if n := h.clk.PendingCount(); n != 0 {
					t.Fatalf("pending timers after Arm on a stopped scheduler = %d, want 0", n)
				}
			}
		})
	}
}
