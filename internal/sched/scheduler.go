package sched

import (
	"fmt"
	"log/slog"

	"github.com/me/tos/internal/clock"
	"github.com/me/tos/internal/machine"
	"github.com/me/tos/internal/thread"
	"github.com/me/tos/internal/trace"
)

// Alarm is the timer subsystem as seen by the scheduler. Periodic preemption
// is delegated to it after every selection: only the lowest band is
// time-sliced, the upper bands run until they block, finish, or are displaced
// by the preemption signal.
type Alarm interface {
	SetPeriodicPreemption(enabled bool)
}

// Scheduler owns the ready set, the single running slot, and the
// deferred-destruction slot. All entry points require interrupts to be
// masked; violating that is a caller bug and aborts the kernel.
type Scheduler struct {
	intr     *machine.Interrupt
	clock    *clock.Clock
	ready    *ReadySet
	switcher machine.Switcher
	alarm    Alarm
	tracer   *trace.Tracer
	logger   *slog.Logger

	// current is the one RUNNING thread. Exactly one thread is running at
	// all times once the kernel has booted.
	current *thread.Thread
	// pendingDestroy holds a finished thread between the dispatch that
	// switched away from it and the next dispatch's cleanup step. Its stack
	// is still live until that switch completes, so it cannot be released
	// any earlier.
	pendingDestroy *thread.Thread
	// preemptRequested is a one-shot advisory flag raised when an urgent
	// thread becomes ready. The timer/interrupt-return path consumes it;
	// the scheduler only produces it.
	preemptRequested bool
}

// New returns a scheduler with an empty ready set and no running thread.
// Call Bootstrap to install the boot thread before the first dispatch.
func New(intr *machine.Interrupt, clk *clock.Clock, sw machine.Switcher, alarm Alarm, tracer *trace.Tracer, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		intr:     intr,
		clock:    clk,
		ready:    NewReadySet(tracer),
		switcher: sw,
		alarm:    alarm,
		tracer:   tracer,
		logger:   logger.With("component", "sched"),
	}
}

// Bootstrap installs t as the initially running thread. Called once, during
// kernel init, before any dispatch.
func (s *Scheduler) Bootstrap(t *thread.Thread) {
	if s.current != nil {
		panic("sched: bootstrap with a thread already running")
	}
	t.SetStatus(thread.StatusRunning)
	s.current = t
}

// Current returns the running thread.
func (s *Scheduler) Current() *thread.Thread {
	return s.current
}

// MarkReady makes t schedulable, inserting it into the band its current
// priority selects.
//
// Two side effects ride along. Whenever a different thread becomes ready the
// running thread's burst estimate is aged:
//
//	recentBurst = burstTicks/2 + recentBurst/2
//
// so the estimate stays current even if the running thread never yields. And
// an insertion into L1 or L2 by anyone other than the running thread raises
// the one-shot preemption signal; L3 insertions never do, since L3 progress
// rides on the periodic timer instead.
func (s *Scheduler) MarkReady(t *thread.Thread) {
	s.mustHoldExclusion("MarkReady")
	s.logger.Debug("ready", "thread", t.Name(), "priority", t.Priority())

	t.SetStatus(thread.StatusReady)

	if s.current != nil && t != s.current {
		s.current.SetRecentBurst(s.current.BurstTicks()/2 + s.current.RecentBurst()/2)
	}

	band := s.ready.Insert(t)
	if band != BandL3 && t != s.current {
		s.preemptRequested = true
	}
}

// PeekNext returns the thread SelectNext would pick without removing it, or
// nil when no thread is ready.
func (s *Scheduler) PeekNext() *thread.Thread {
	s.mustHoldExclusion("PeekNext")
	t, _ := s.ready.Peek()
	return t
}

// SelectNext removes and returns the next thread to run, or nil when no
// thread is ready (the caller idles the CPU). As a side effect the periodic
// preemption delegated to the alarm is recomputed: enabled only when the
// selection came from L3, i.e. no L1/L2 work was waiting.
func (s *Scheduler) SelectNext() *thread.Thread {
	s.mustHoldExclusion("SelectNext")

	t, band := s.ready.Remove()
	if t == nil {
		return nil
	}
	s.alarm.SetPeriodicPreemption(band == BandL3)
	return t
}

// ConsumePreempt reads and clears the preemption signal. The timer and
// interrupt-return paths call this to decide whether to displace the running
// thread immediately.
func (s *Scheduler) ConsumePreempt() bool {
	s.mustHoldExclusion("ConsumePreempt")
	v := s.preemptRequested
	s.preemptRequested = false
	return v
}

// Dispatch hands the CPU to next. If finishing is set, the calling thread is
// done for good: it is parked in the destruction slot and released by
// whichever thread runs next, never by itself, because its stack is in use
// until the switch below completes.
//
// The call suspends partway through, at the context switch, and does not
// return until a future dispatch selects the calling thread again. The steps
// around the switch are order-critical; see the step comments.
func (s *Scheduler) Dispatch(next *thread.Thread, finishing bool) {
	s.mustHoldExclusion("Dispatch")
	old := s.current

	if finishing {
		if s.pendingDestroy != nil {
			panic("sched: destruction slot already occupied")
		}
		s.pendingDestroy = old
	}

	// Save the outgoing user state before anything else touches it.
	if space := old.Space(); space != nil {
		old.SaveUserState()
		space.SaveState()
	}

	// The outgoing thread may have silently overrun its stack; refuse to
	// carry on from a corrupted frame.
	old.CheckOverflow()

	s.current = next
	next.SetStatus(thread.StatusRunning)

	s.logger.Debug("switching", "from", old.Name(), "to", next.Name())
	s.tracer.Selected(next.ID())
	s.tracer.Replaced(old.ID(), old.BurstTicks())

	old.SetLastDispatchTick(s.clock.Now())
	// Burst accounting starts fresh for the thread about to run.
	next.ResetBurstTicks()

	// Suspension point. Execution of the calling thread stops here and
	// resumes below when some later dispatch selects it again.
	s.switcher.Switch(old.Context(), next.Context())

	// Running old again, an arbitrary number of dispatches later.
	s.mustHoldExclusion("Dispatch (resume)")

	// Clean up whichever thread most recently finished on this CPU, not
	// necessarily the one this call marked finishing.
	s.ReapFinished()

	if space := old.Space(); space != nil {
		old.RestoreUserState()
		space.RestoreState()
	}
}

// ReapFinished releases the thread waiting in the destruction slot, if any.
// It runs on the first stretch of CPU time after the finisher switched away:
// from Dispatch's resumption step, or from a new thread's first-run
// bootstrap.
func (s *Scheduler) ReapFinished() {
	s.mustHoldExclusion("ReapFinished")
	if s.pendingDestroy == nil {
		return
	}
	s.logger.Debug("reaping finished thread", "thread", s.pendingDestroy.Name())
	s.pendingDestroy.Release()
	s.pendingDestroy = nil
}

func (s *Scheduler) mustHoldExclusion(op string) {
	if !s.intr.Disabled() {
		panic(fmt.Sprintf("sched: %s called with interrupts enabled", op))
	}
}
