package machine

import (
	"testing"
	"time"
)

// TestSwitch_SuspendResume verifies the core switch contract: the caller is
// suspended at the switch and resumes exactly where it left off when a later
// switch hands the CPU back.
func TestSwitch_SuspendResume(t *testing.T) {
	var sw GoroutineSwitcher
	boot := BootContext()

	var log []string
	var worker *Context
	worker = NewContext(
		func() { log = append(log, "begin") },
		func() {
			log = append(log, "w1")
			sw.Switch(worker, boot)
			log = append(log, "w2")
			sw.Switch(worker, boot)
		},
		func() { t.Error("finish hook must not run in this test") },
	)

	sw.Switch(boot, worker) // first leg: starts the worker
	log = append(log, "b1")
	sw.Switch(boot, worker) // second leg: resumes after the worker's first switch
	log = append(log, "b2")

	want := []string{"begin", "w1", "b1", "w2", "b2"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i, w := range want {
		if log[i] != w {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}

	worker.Release()
}

// TestSwitch_NoInterleavedExecution verifies that between suspension and
// resumption, none of the suspended thread's code runs: a shared counter
// mutated strictly alternately never sees a stale value.
func TestSwitch_NoInterleavedExecution(t *testing.T) {
	var sw GoroutineSwitcher
	boot := BootContext()

	counter := 0
	const legs = 100
	var worker *Context
	worker = NewContext(
		nil,
		func() {
			for i := 0; i < legs; i++ {
				if counter%2 != 0 {
					t.Errorf("worker resumed with odd counter %d", counter)
				}
				counter++
				sw.Switch(worker, boot)
			}
		},
		func() { t.Error("finish hook must not run in this test") },
	)

	for i := 0; i < legs; i++ {
		sw.Switch(boot, worker)
		if counter%2 != 1 {
			t.Fatalf("boot resumed with even counter %d", counter)
		}
		counter++
	}
	worker.Release()
}

// TestRelease_TerminatesParkedContext verifies that releasing a parked
// context tears its goroutine down without resuming the thread's code.
func TestRelease_TerminatesParkedContext(t *testing.T) {
	var sw GoroutineSwitcher
	boot := BootContext()

	resumed := make(chan struct{})
	exited := make(chan struct{})
	var worker *Context
	worker = NewContext(
		nil,
		func() {
			defer close(exited)
			sw.Switch(worker, boot)
			close(resumed) // must never happen
		},
		func() {},
	)

	sw.Switch(boot, worker)
	worker.Release()

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("released context's goroutine did not exit")
	}
	select {
	case <-resumed:
		t.Error("released context resumed the dead thread's code")
	default:
	}
}

// TestFenceIntact verifies the stack guard check.
func TestFenceIntact(t *testing.T) {
	c := NewContext(nil, func() {}, func() {})
	if !c.FenceIntact() {
		t.Error("fresh context must have an intact fence")
	}
	c.fence = 0
	if c.FenceIntact() {
		t.Error("clobbered fence not detected")
	}
	if !BootContext().FenceIntact() {
		t.Error("boot context must have an intact fence")
	}
}

// TestInterruptLevels verifies SetLevel returns the previous level so
// callers can restore it.
func TestInterruptLevels(t *testing.T) {
	intr := NewInterrupt()
	if !intr.Disabled() {
		t.Error("machine must boot with interrupts off")
	}

	if old := intr.SetLevel(IntOn); old != IntOff {
		t.Errorf("SetLevel returned %v, want IntOff", old)
	}
	if intr.Disabled() {
		t.Error("interrupts still reported off after enabling")
	}
	if old := intr.SetLevel(IntOff); old != IntOn {
		t.Errorf("SetLevel returned %v, want IntOn", old)
	}
	if got := intr.Level(); got != IntOff {
		t.Errorf("Level() = %v, want IntOff", got)
	}
}
