package instance

import (
	"log/slog"
	"sync"
	"time"

	"github.com/five82/panels/internal/clock"
)

// Visibility is the presenter's last reported state.
type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

func (v Visibility) String() string {
	if v == Hidden {
		return "hidden"
	}
	return "visible"
}

// Phase summarizes the scheduler for display and tests.
type Phase int

const (
	PhaseIdle     Phase = iota // no timer, nothing pending
	PhaseArmed                 // timer pending
	PhaseDeferred              // a tick was refused and awaits a visibility change
)

func (p Phase) String() string {
	switch p {
	case PhaseArmed:
		return "armed"
	case PhaseDeferred:
		return "deferred"
	default:
		return "idle"
	}
}

// SchedulerConfig wires a Scheduler.
type SchedulerConfig struct {
	Clock    clock.Clock
	Interval time.Duration // zero disables the timer
	Firing   FiringPolicy
	Advance  func() error
	Logger   *slog.Logger
	ID       string
}

// Scheduler owns one instance's update timer. At most one timer is pending.
// A tick refused by the firing policy is remembered and replayed on the
// next matching visibility change.
type Scheduler struct {
	clock    clock.Clock
	interval time.Duration
	firing   FiringPolicy
	advance  func() error
	logger   *slog.Logger
	id       string

	mu         sync.Mutex
	visibility Visibility
	deferred   bool
	timer      clock.Timer
	gen        uint64
	stopped    bool
}

// NewScheduler builds a Scheduler in the visible, idle state.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	s := &Scheduler{
		clock:    cfg.Clock,
		interval: cfg.Interval,
		firing:   cfg.Firing,
		advance:  cfg.Advance,
		logger:   cfg.Logger,
		id:       cfg.ID,
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.advance == nil {
		s.advance = func() error { return nil }
	}
	return s
}

// Arm cancels any pending timer, clears the deferred flag and starts a new
// timer when an interval is configured and the scheduler is not stopped.
func (s *Scheduler) Arm() {
	s.mu.Lock()
	s.armLocked()
	s.mu.Unlock()
}

func (s *Scheduler) armLocked() {
	s.stopLocked()
	s.deferred = false
	if s.interval <= 0 || s.stopped {
		return
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.interval, func() { s.tick(gen) })
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Stop cancels the pending timer and forgets any deferred tick. The
// scheduler never arms again, including from a tick whose advance is
// still running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.stopLocked()
	s.deferred = false
	s.gen++
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	if !s.firing.Permits(s.visibility) {
		s.deferred = true
		visibility := s.visibility
		s.mu.Unlock()
		s.logger.Debug("tick deferred", "instance", s.id, "policy", s.firing.String(), "visibility", visibility.String())
		return
	}
	s.mu.Unlock()
	s.run("tick")
}

// run advances and then re-arms, whether or not the advance succeeded.
func (s *Scheduler) run(reason string) {
	if err := s.advance(); err != nil {
		s.logger.Warn("auto-advance failed", "instance", s.id, "reason", reason, "error", err)
	}
	s.Arm()
}

// Suspend records that the instance is hidden. A deferred tick under
// onlyHidden runs now; otherwise an idle timer is armed unless the policy
// is onlyHidden.
func (s *Scheduler) Suspend() {
	s.mu.Lock()
	s.visibility = Hidden
	if s.deferred && s.firing == FireOnlyHidden {
		s.deferred = false
		s.mu.Unlock()
		s.run("suspend")
		return
	}
	if s.timer == nil && s.firing != FireOnlyHidden {
		s.armLocked()
	}
	s.mu.Unlock()
}

// Resume records that the instance is visible. A deferred tick under
// onlyVisible runs now; otherwise an idle timer is armed.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.visibility = Visible
	if s.deferred && s.firing == FireOnlyVisible {
		s.deferred = false
		s.mu.Unlock()
		s.run("resume")
		return
	}
	if s.timer == nil {
		s.armLocked()
	}
	s.mu.Unlock()
}

// Visibility returns the last reported visibility.
func (s *Scheduler) Visibility() Visibility {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibility
}

// Phase reports whether a timer is pending or a tick is deferred.
func (s *Scheduler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.timer != nil:
		return PhaseArmed
	case s.deferred:
		return PhaseDeferred
	default:
		return PhaseIdle
	}
}

// Interval returns the configured advance interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Firing returns the configured firing policy.
func (s *Scheduler) Firing() FiringPolicy { return s.firing }
