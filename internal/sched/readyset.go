// Package sched is the thread-dispatch core: the three-band ready set, the
// selection policy, and the dispatch protocol that hands the CPU between
// threads and defers destruction of a finished thread until control has left
// its stack.
//
// Every operation in this package assumes interrupts are already masked.
// Locks cannot provide mutual exclusion here: waiting for a contested lock
// would call back into this same scheduler and loop forever.
package sched

import (
	"sort"

	"github.com/me/tos/internal/thread"
	"github.com/me/tos/internal/trace"
)

// Band identifies one of the three ready queues.
type Band int

const (
	BandNone Band = iota
	BandL1
	BandL2
	BandL3
)

// String returns the queue name used in trace lines.
func (b Band) String() string {
	switch b {
	case BandL1:
		return "L1"
	case BandL2:
		return "L2"
	case BandL3:
		return "L3"
	}
	return "none"
}

// BandFor maps a priority to its ready band: L1 for 100 and above, L2 for
// 50–99, L3 below 50. The band is re-evaluated from the thread's current
// priority each time it becomes ready.
func BandFor(priority int) Band {
	switch {
	case priority >= 100:
		return BandL1
	case priority >= 50:
		return BandL2
	default:
		return BandL3
	}
}

// ReadySet holds the threads that are ready but not running, split into three
// bands with distinct orderings:
//
//	L1: ascending recent-burst estimate (shortest expected burst first)
//	L2: descending priority
//	L3: FIFO
//
// Ties keep insertion order. A thread is in at most one band at a time, and
// never in any band while running. The set is sorted on insertion; at
// teaching scale the queues are a handful of threads long.
type ReadySet struct {
	l1, l2, l3 []*thread.Thread
	tracer     *trace.Tracer
}

// NewReadySet returns an empty ready set emitting insert/remove trace lines
// through tracer.
func NewReadySet(tracer *trace.Tracer) *ReadySet {
	return &ReadySet{tracer: tracer}
}

// Insert places t into the band selected by its current priority and returns
// that band.
func (r *ReadySet) Insert(t *thread.Thread) Band {
	band := BandFor(t.Priority())
	r.tracer.Inserted(t.ID(), band.String())

	switch band {
	case BandL1:
		r.l1 = append(r.l1, t)
		sort.SliceStable(r.l1, func(i, j int) bool {
			return r.l1[i].RecentBurst() < r.l1[j].RecentBurst()
		})
	case BandL2:
		r.l2 = append(r.l2, t)
		sort.SliceStable(r.l2, func(i, j int) bool {
			return r.l2[i].Priority() > r.l2[j].Priority()
		})
	default:
		r.l3 = append(r.l3, t)
	}
	return band
}

// Peek returns the thread Remove would choose, without removing it. Strict
// band priority: L1 first, then L2, then L3. Returns nil, BandNone when all
// bands are empty.
func (r *ReadySet) Peek() (*thread.Thread, Band) {
	switch {
	case len(r.l1) > 0:
		return r.l1[0], BandL1
	case len(r.l2) > 0:
		return r.l2[0], BandL2
	case len(r.l3) > 0:
		return r.l3[0], BandL3
	}
	return nil, BandNone
}

// Remove pops and returns the highest-priority ready thread and the band it
// came from, or nil, BandNone when empty.
func (r *ReadySet) Remove() (*thread.Thread, Band) {
	t, band := r.Peek()
	if t == nil {
		return nil, BandNone
	}

	switch band {
	case BandL1:
		r.l1 = r.l1[1:]
	case BandL2:
		r.l2 = r.l2[1:]
	case BandL3:
		r.l3 = r.l3[1:]
	}
	r.tracer.Removed(t.ID(), band.String())
	return t, band
}

// Empty reports whether all three bands are empty.
func (r *ReadySet) Empty() bool {
	return len(r.l1) == 0 && len(r.l2) == 0 && len(r.l3) == 0
}

// Len returns the total number of ready threads.
func (r *ReadySet) Len() int {
	return len(r.l1) + len(r.l2) + len(r.l3)
}

// BandLen returns the number of threads in one band.
func (r *ReadySet) BandLen(b Band) int {
	switch b {
	case BandL1:
		return len(r.l1)
	case BandL2:
		return len(r.l2)
	case BandL3:
		return len(r.l3)
	}
	return 0
}

// contains reports whether t sits in any band. Used by invariant checks.
func (r *ReadySet) contains(t *thread.Thread) bool {
	for _, band := range [][]*thread.Thread{r.l1, r.l2, r.l3} {
		for _, q := range band {
			if q == t {
				return true
			}
		}
	}
	return false
}
