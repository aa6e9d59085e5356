package store

import (
	"context"
	"fmt"
	"time"

	"github.com/me/tos/pkg/model"
)

// Recorder buffers trace events for one run and writes them to the store in
// a single batch. It satisfies the tracer's sink interface, so attaching a
// Recorder to a tracer is all it takes to persist a run.
type Recorder struct {
	store  Store
	runID  string
	events []model.Event
}

// NewRecorder returns a recorder stamping every event with runID.
func NewRecorder(st Store, runID string) *Recorder {
	return &Recorder{store: st, runID: runID}
}

// Record buffers one event. Called synchronously from the trace path, so it
// must not block or touch the database.
func (r *Recorder) Record(ev model.Event) {
	ev.RunID = r.runID
	r.events = append(r.events, ev)
}

// Len returns the number of buffered events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Flush writes all buffered events and marks the run complete.
func (r *Recorder) Flush(ctx context.Context, completedAt time.Time, totalTicks int64) error {
	if err := r.store.AppendEvents(ctx, r.events); err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	if err := r.store.CompleteRun(ctx, r.runID, completedAt, totalTicks); err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	r.events = nil
	return nil
}
