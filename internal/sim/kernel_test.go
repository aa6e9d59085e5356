package sim

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runWorkload(t *testing.T, quantum int64, w *Workload) (Summary, string) {
	t.Helper()
	if err := w.Validate(); err != nil {
		t.Fatalf("invalid workload: %v", err)
	}
	var buf bytes.Buffer
	k := NewKernel(quantum, &buf, discardLogger())
	sum := k.Run(w)
	return sum, buf.String()
}

// TestRun_SingleThread pins the complete trace of the simplest run: one
// low-band thread burning two ticks. Every line and its tick stamp matter.
func TestRun_SingleThread(t *testing.T) {
	w := &Workload{
		Name: "single",
		Threads: []ThreadSpec{
			{ID: 3, Name: "t", Priority: 20, Steps: []Step{{Run: 2}}},
		},
	}
	sum, out := runWorkload(t, 100, w)

	want := strings.Join([]string{
		"Tick 0: Thread 3 is inserted into queue L3",
		"Tick 0: Thread 3 is removed from queue L3",
		"Tick 0: Thread 0 is inserted into queue L3",
		"Tick 0: Thread 3 is now selected for execution",
		"Tick 0: Thread 0 is replaced, and it has executed 0 ticks",
		"Tick 2: Thread 0 is removed from queue L3",
		"Tick 2: Thread 0 is now selected for execution",
		"Tick 2: Thread 3 is replaced, and it has executed 2 ticks",
	}, "\n") + "\n"
	if out != want {
		t.Errorf("trace:\n%swant:\n%s", out, want)
	}
	if sum.TotalTicks != 2 {
		t.Errorf("TotalTicks = %d, want 2", sum.TotalTicks)
	}
	if sum.Threads != 1 || sum.Events != 8 {
		t.Errorf("summary = %+v", sum)
	}
}

// TestRun_RoundRobinTimeSlicing verifies two low-band threads share the CPU
// in quantum-sized slices.
func TestRun_RoundRobinTimeSlicing(t *testing.T) {
	w := &Workload{
		Name: "rr",
		Threads: []ThreadSpec{
			{ID: 1, Name: "a", Priority: 10, Steps: []Step{{Run: 6}}},
			{ID: 2, Name: "b", Priority: 20, Steps: []Step{{Run: 6}}},
		},
	}
	sum, out := runWorkload(t, 4, w)

	if sum.TotalTicks != 12 {
		t.Errorf("TotalTicks = %d, want 12", sum.TotalTicks)
	}
	// The first thread runs a full quantum, then is displaced by the timer.
	for _, line := range []string{
		"Tick 4: Thread 1 is replaced, and it has executed 4 ticks",
		"Tick 8: Thread 2 is replaced, and it has executed 4 ticks",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("trace missing %q\ngot:\n%s", line, out)
		}
	}
}

// TestRun_NoTimeSlicingInTopBand verifies a top-band thread runs past the
// quantum without being displaced when it has the machine to itself.
func TestRun_NoTimeSlicingInTopBand(t *testing.T) {
	w := &Workload{
		Name: "long",
		Threads: []ThreadSpec{
			{ID: 1, Name: "crunch", Priority: 120, Steps: []Step{{Run: 10}}},
		},
	}
	sum, out := runWorkload(t, 4, w)

	if sum.TotalTicks != 10 {
		t.Errorf("TotalTicks = %d, want 10", sum.TotalTicks)
	}
	if !strings.Contains(out, "Tick 10: Thread 1 is replaced, and it has executed 10 ticks") {
		t.Errorf("thread did not run its full burst uninterrupted:\n%s", out)
	}
	if strings.Contains(out, "Tick 4: Thread 1 is replaced") {
		t.Errorf("top-band thread was time-sliced:\n%s", out)
	}
}

// TestRun_SleepAndWake verifies a sleeping thread is woken by the alarm and
// re-inserted at its due tick while the kernel idles the clock forward.
func TestRun_SleepAndWake(t *testing.T) {
	w := &Workload{
		Name: "sleeper",
		Threads: []ThreadSpec{
			{ID: 4, Name: "s", Priority: 120, Steps: []Step{{Run: 3}, {Sleep: 5}, {Run: 2}}},
		},
	}
	sum, out := runWorkload(t, 100, w)

	if !strings.Contains(out, "Tick 8: Thread 4 is inserted into queue L1") {
		t.Errorf("wakeup not traced at its due tick:\n%s", out)
	}
	if sum.TotalTicks != 10 {
		t.Errorf("TotalTicks = %d, want 10", sum.TotalTicks)
	}
}

// TestRun_UrgentWakeupPreempts verifies the end-to-end preemption path: a
// top-band thread waking mid-burst displaces the running low-band thread at
// the very tick it becomes ready.
func TestRun_UrgentWakeupPreempts(t *testing.T) {
	w := &Workload{
		Name: "preempt",
		Threads: []ThreadSpec{
			{ID: 1, Name: "bulk", Priority: 10, Steps: []Step{{Run: 20}}},
			{ID: 2, Name: "urgent", Priority: 120, Steps: []Step{{Sleep: 5}, {Run: 2}}},
		},
	}
	sum, out := runWorkload(t, 100, w)

	for _, line := range []string{
		"Tick 5: Thread 2 is inserted into queue L1",
		"Tick 5: Thread 1 is replaced, and it has executed 5 ticks",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("trace missing %q\ngot:\n%s", line, out)
		}
	}
	if sum.TotalTicks != 22 {
		t.Errorf("TotalTicks = %d, want 22", sum.TotalTicks)
	}
}

// TestRun_ShortestBurstFirst verifies the top band dispatches the thread with
// the smaller decayed burst estimate first when both are ready.
func TestRun_ShortestBurstFirst(t *testing.T) {
	// Both threads sleep first so they wake and queue together at tick 3,
	// after each has established a different burst history.
	w := &Workload{
		Name: "sjf",
		Threads: []ThreadSpec{
			{ID: 1, Name: "long", Priority: 120, Steps: []Step{{Run: 8}}},
			{ID: 2, Name: "short", Priority: 110, Steps: []Step{{Run: 3}}},
		},
	}
	_, out := runWorkload(t, 100, w)

	// Fresh threads tie at estimate zero, so insertion order decides: the
	// first spawned runs first and the second preempts nothing further.
	first := strings.Index(out, "Thread 1 is now selected")
	second := strings.Index(out, "Thread 2 is now selected")
	if first == -1 || second == -1 || first > second {
		t.Errorf("unexpected dispatch order:\n%s", out)
	}
}
