// Package trace emits the scheduler's console trace lines. The line formats
// are load-bearing: existing grading harnesses match them byte for byte, so
// they must not change. Each line is optionally mirrored to a Sink as a
// structured event for persistence.
package trace

import (
	"fmt"
	"io"

	"github.com/me/tos/internal/clock"
	"github.com/me/tos/pkg/model"
)

// Sink receives a structured copy of every trace line. The tracer fills every
// Event field except RunID, which the sink owns.
type Sink interface {
	Record(ev model.Event)
}

// Tracer writes trace lines to w, tick-stamped from clk.
type Tracer struct {
	w     io.Writer
	clock *clock.Clock
	sink  Sink
	seq   int
}

// New returns a tracer writing to w. Pass io.Discard to silence console
// output while still feeding a sink.
func New(w io.Writer, clk *clock.Clock) *Tracer {
	return &Tracer{w: w, clock: clk}
}

// SetSink attaches a structured event sink. A nil sink detaches it.
func (t *Tracer) SetSink(s Sink) {
	t.sink = s
}

// Count returns the number of events emitted so far.
func (t *Tracer) Count() int {
	return t.seq
}

// Inserted records a thread entering a ready band.
func (t *Tracer) Inserted(threadID int, queue string) {
	line := fmt.Sprintf("Tick %d: Thread %d is inserted into queue %s", t.clock.Now(), threadID, queue)
	t.emit(model.Event{
		ThreadID: threadID,
		Kind:     model.EventInserted,
		Queue:    queue,
		Line:     line,
	})
}

// Removed records a thread leaving a ready band for dispatch.
func (t *Tracer) Removed(threadID int, queue string) {
	line := fmt.Sprintf("Tick %d: Thread %d is removed from queue %s", t.clock.Now(), threadID, queue)
	t.emit(model.Event{
		ThreadID: threadID,
		Kind:     model.EventRemoved,
		Queue:    queue,
		Line:     line,
	})
}

// Selected records a thread being handed the CPU.
func (t *Tracer) Selected(threadID int) {
	line := fmt.Sprintf("Tick %d: Thread %d is now selected for execution", t.clock.Now(), threadID)
	t.emit(model.Event{
		ThreadID: threadID,
		Kind:     model.EventSelected,
		Line:     line,
	})
}

// Replaced records the displacement of the previously running thread and the
// length of the burst it just finished.
func (t *Tracer) Replaced(threadID int, burstTicks int64) {
	line := fmt.Sprintf("Tick %d: Thread %d is replaced, and it has executed %d ticks", t.clock.Now(), threadID, burstTicks)
	t.emit(model.Event{
		ThreadID:   threadID,
		Kind:       model.EventReplaced,
		BurstTicks: burstTicks,
		Line:       line,
	})
}

func (t *Tracer) emit(ev model.Event) {
	ev.Seq = t.seq
	ev.Tick = t.clock.Now()
	t.seq++
	fmt.Fprintln(t.w, ev.Line)
	if t.sink != nil {
		t.sink.Record(ev)
	}
}
