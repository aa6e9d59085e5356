package sim

import (
	"sort"

	"github.com/me/tos/internal/machine"
	"github.com/me/tos/internal/thread"
)

// wakeup is one sleeping thread and the tick it becomes ready again.
type wakeup struct {
	t  *thread.Thread
	at int64
}

// Alarm is the simulated timer subsystem. It counts the running thread's
// quantum, fires the periodic yield the scheduler delegates to it for the
// lowest band, and wakes sleeping threads at their due tick.
type Alarm struct {
	kernel    *Kernel
	quantum   int64
	remaining int64
	// periodic is owned by the scheduler: time-slicing applies only while
	// nothing above the lowest band was waiting at the last selection.
	periodic bool
	expired  bool

	// wakeups is kept sorted by due tick.
	wakeups []wakeup
}

func newAlarm(k *Kernel, quantum int64) *Alarm {
	if quantum <= 0 {
		panic("sim: quantum must be positive")
	}
	return &Alarm{kernel: k, quantum: quantum, remaining: quantum}
}

// SetPeriodicPreemption implements sched.Alarm. The scheduler calls it after
// every selection.
func (a *Alarm) SetPeriodicPreemption(enabled bool) {
	a.periodic = enabled
}

// tick runs once per clock tick: count down the quantum and wake any
// sleepers that are due. Wake-ups go through MarkReady with interrupts
// masked, like any other interrupt handler.
func (a *Alarm) tick() {
	a.remaining--
	if a.remaining <= 0 {
		a.remaining = a.quantum
		if a.periodic {
			a.expired = true
		}
	}

	now := a.kernel.clock.Now()
	for len(a.wakeups) > 0 && a.wakeups[0].at <= now {
		w := a.wakeups[0]
		a.wakeups = a.wakeups[1:]

		old := a.kernel.intr.SetLevel(machine.IntOff)
		a.kernel.sched.MarkReady(w.t)
		a.kernel.intr.SetLevel(old)
	}
}

// consumeQuantumExpiry reads and clears the quantum-expired flag.
func (a *Alarm) consumeQuantumExpiry() bool {
	v := a.expired
	a.expired = false
	return v
}

// scheduleWake queues t to become ready at tick at.
func (a *Alarm) scheduleWake(t *thread.Thread, at int64) {
	a.wakeups = append(a.wakeups, wakeup{t: t, at: at})
	sort.SliceStable(a.wakeups, func(i, j int) bool {
		return a.wakeups[i].at < a.wakeups[j].at
	})
}

// hasSleepers reports whether any thread is waiting on the alarm.
func (a *Alarm) hasSleepers() bool {
	return len(a.wakeups) > 0
}
