// Package model defines the records shared by the run recorder, the trace
// store, and the trace viewer API.
package model

import "time"

// Run is one recorded scheduler run: a workload executed to completion, with
// its trace events persisted for later inspection.
type Run struct {
	ID          string     `json:"id"`
	Workload    string     `json:"workload"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TotalTicks  int64      `json:"total_ticks"`
	ThreadCount int        `json:"thread_count"`
}

// EventKind classifies a trace event.
type EventKind string

const (
	// EventInserted: a thread entered a ready band.
	EventInserted EventKind = "INSERTED"
	// EventRemoved: a thread was taken out of a ready band for dispatch.
	EventRemoved EventKind = "REMOVED"
	// EventSelected: a thread was handed the CPU.
	EventSelected EventKind = "SELECTED"
	// EventReplaced: the previously running thread was displaced.
	EventReplaced EventKind = "REPLACED"
)

// Event is one scheduler trace event. Seq orders events within a run; Line is
// the exact console trace line the event produced.
type Event struct {
	RunID      string    `json:"run_id"`
	Seq        int       `json:"seq"`
	Tick       int64     `json:"tick"`
	ThreadID   int       `json:"thread_id"`
	Kind       EventKind `json:"kind"`
	Queue      string    `json:"queue,omitempty"`
	BurstTicks int64     `json:"burst_ticks,omitempty"`
	Line       string    `json:"line"`
}
