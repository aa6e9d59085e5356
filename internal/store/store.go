// Package store persists recorded scheduler runs and their trace events.
package store

import (
	"context"
	"time"

	"github.com/me/tos/pkg/model"
)

// Store defines the persistence layer for runs and events.
type Store interface {
	// Run lifecycle
	CreateRun(ctx context.Context, run *model.Run) error
	CompleteRun(ctx context.Context, id string, completedAt time.Time, totalTicks int64) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context) ([]*model.Run, error)

	// Trace events
	AppendEvents(ctx context.Context, events []model.Event) error
	ListEventsByRun(ctx context.Context, runID string) ([]model.Event, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
