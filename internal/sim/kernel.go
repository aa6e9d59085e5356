// Package sim executes a workload of synthetic threads on the dispatch core.
// It plays the role of "the rest of the kernel": it owns the clock, the
// interrupt mask, and the alarm, drives thread lifecycles (yield, sleep,
// finish), and consumes the scheduler's preemption signal: the pieces the
// core itself deliberately leaves to its callers.
package sim

import (
	"io"
	"log/slog"

	"github.com/me/tos/internal/clock"
	"github.com/me/tos/internal/machine"
	"github.com/me/tos/internal/sched"
	"github.com/me/tos/internal/thread"
	"github.com/me/tos/internal/trace"
)

// Summary is the result of a completed run.
type Summary struct {
	Workload   string
	TotalTicks int64
	Threads    int
	Events     int
}

// Kernel is a single simulated uniprocessor: one clock, one interrupt mask,
// one scheduler, and the goroutine-backed context switcher. The goroutine
// that calls Run becomes the boot thread (ID 0), which spawns the workload
// and idles between dispatches.
type Kernel struct {
	clock  *clock.Clock
	intr   *machine.Interrupt
	sched  *sched.Scheduler
	alarm  *Alarm
	tracer *trace.Tracer
	logger *slog.Logger

	main *thread.Thread
	// live counts spawned threads that have not finished yet.
	live int
}

// NewKernel builds a kernel whose trace lines go to out. quantum is the
// periodic-preemption time slice applied to the lowest band.
func NewKernel(quantum int64, out io.Writer, logger *slog.Logger) *Kernel {
	clk := clock.New()
	k := &Kernel{
		clock:  clk,
		intr:   machine.NewInterrupt(),
		tracer: trace.New(out, clk),
		logger: logger.With("component", "sim"),
	}
	k.alarm = newAlarm(k, quantum)
	k.sched = sched.New(k.intr, clk, machine.GoroutineSwitcher{}, k.alarm, k.tracer, logger)

	k.main = thread.New(0, "main", 0)
	k.main.AttachContext(machine.BootContext())
	k.sched.Bootstrap(k.main)

	return k
}

// Tracer exposes the kernel's tracer so a run recorder can be attached.
func (k *Kernel) Tracer() *trace.Tracer { return k.tracer }

// Clock exposes the kernel's tick counter.
func (k *Kernel) Clock() *clock.Clock { return k.clock }

// Run spawns every thread in the workload and drives the machine until all
// of them have finished, then returns the run summary. It must be called
// from the goroutine that created the kernel, and at most once.
func (k *Kernel) Run(w *Workload) Summary {
	old := k.intr.SetLevel(machine.IntOff)

	for _, spec := range w.Threads {
		k.spawn(spec)
	}

	for k.live > 0 {
		switch {
		case k.sched.PeekNext() != nil:
			// Whether or not an urgent insert requested displacement,
			// the boot thread steps aside for anything runnable.
			k.sched.ConsumePreempt()
			k.yield(k.main)
		case k.alarm.hasSleepers():
			// Idle: nothing runnable, but wake-ups are pending.
			k.oneTick()
		default:
			panic("sim: threads outstanding but nothing runnable or sleeping")
		}
	}

	k.intr.SetLevel(old)
	return Summary{
		Workload:   w.Name,
		TotalTicks: k.clock.Now(),
		Threads:    len(w.Threads),
		Events:     k.tracer.Count(),
	}
}

// spawn creates the thread, wires its machine context, and marks it ready.
// Interrupts must be off.
func (k *Kernel) spawn(spec ThreadSpec) {
	t := thread.New(spec.ID, spec.Name, spec.Priority)
	steps := spec.Steps
	t.AttachContext(machine.NewContext(
		k.threadBegin,
		func() { k.runSteps(t, steps) },
		func() { k.finish(t) },
	))
	k.live++
	k.sched.MarkReady(t)
}

// threadBegin runs as the first instructions of a brand-new thread, with
// interrupts still off from the dispatch that started it. Like a resuming
// dispatch, it must reap whichever thread finished before it got the CPU.
func (k *Kernel) threadBegin() {
	k.sched.ReapFinished()
	k.intr.SetLevel(machine.IntOn)
}

func (k *Kernel) runSteps(t *thread.Thread, steps []Step) {
	for _, st := range steps {
		switch {
		case st.Run > 0:
			k.runFor(t, st.Run)
		case st.Sleep > 0:
			k.waitUntil(t, st.Sleep)
		}
	}
}

// runFor burns n ticks of CPU on t, checking after every tick whether the
// alarm quantum expired or an urgent thread displaced us.
func (k *Kernel) runFor(t *thread.Thread, n int64) {
	for i := int64(0); i < n; i++ {
		k.clock.Advance(1)
		t.ChargeTicks(1)
		k.alarm.tick()

		old := k.intr.SetLevel(machine.IntOff)
		if k.alarm.consumeQuantumExpiry() || k.sched.ConsumePreempt() {
			k.yield(t)
		}
		k.intr.SetLevel(old)
	}
}

// waitUntil blocks t for n ticks on the alarm's wake list.
func (k *Kernel) waitUntil(t *thread.Thread, n int64) {
	old := k.intr.SetLevel(machine.IntOff)
	k.alarm.scheduleWake(t, k.clock.Now()+n)
	k.sleepCurrent(false)
	k.intr.SetLevel(old)
}

// finish ends the calling thread for good. It never returns: the final
// dispatch switches away and the thread's resources are released by whoever
// runs next.
func (k *Kernel) finish(t *thread.Thread) {
	k.intr.SetLevel(machine.IntOff)
	k.logger.Debug("thread finishing", "thread", t.Name())
	k.live--
	k.sleepCurrent(true)
}

// yield moves the running thread back into the ready set and dispatches the
// next one. A no-op when nothing else is ready; the selection happens
// before the re-insert, so a thread never competes with itself.
// Interrupts must be off.
func (k *Kernel) yield(t *thread.Thread) {
	next := k.sched.SelectNext()
	if next == nil {
		return
	}
	k.sched.MarkReady(t)
	k.sched.Dispatch(next, false)
}

// sleepCurrent takes the running thread off the CPU: blocked if it will wake
// again, finished if not. When nothing is runnable the kernel idles the
// clock forward until a wake-up makes something ready. Interrupts must be
// off.
func (k *Kernel) sleepCurrent(finishing bool) {
	t := k.sched.Current()
	if finishing {
		t.SetStatus(thread.StatusFinished)
	} else {
		t.SetStatus(thread.StatusBlocked)
	}

	next := k.sched.SelectNext()
	for next == nil {
		if !k.alarm.hasSleepers() {
			panic("sim: no runnable thread and no pending wakeup")
		}
		k.oneTick()
		next = k.sched.SelectNext()
	}
	k.sched.Dispatch(next, finishing)
}

// oneTick advances time by one tick without charging anyone for it.
func (k *Kernel) oneTick() {
	k.clock.Advance(1)
	k.alarm.tick()
}
