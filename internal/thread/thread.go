// Package thread defines the kernel's thread control block: identity,
// scheduling accounting, lifecycle status, the optional user address space,
// and the opaque saved machine context.
package thread

import (
	"fmt"

	"github.com/me/tos/internal/machine"
)

// Status is the lifecycle state of a thread.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusBlocked
	StatusFinished
)

// String returns the conventional upper-case state name.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "READY"
	case StatusRunning:
		return "RUNNING"
	case StatusBlocked:
		return "BLOCKED"
	case StatusFinished:
		return "FINISHED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// AddressSpace is the user-mode side of a thread: its memory mapping and its
// user register snapshot. Kernel-only threads have none.
type AddressSpace interface {
	// SaveUserRegisters snapshots the user-visible registers before the
	// thread is switched out.
	SaveUserRegisters()
	// RestoreUserRegisters reinstates the snapshot after the thread is
	// switched back in.
	RestoreUserRegisters()
	// SaveState persists the address-space state (page tables etc.) before
	// a switch away.
	SaveState()
	// RestoreState reinstates the address-space state after a switch back.
	RestoreState()
	// Release frees the address space. Called once, from Thread.Release.
	Release()
}

// Thread is one schedulable unit. A thread is owned by exactly one holder at
// a time: a ready band, the running slot, a wait list, or the scheduler's
// deferred-destruction slot.
type Thread struct {
	id   int
	name string

	// priority selects the ready band each time the thread becomes ready.
	priority int
	// recentBurst is the decayed estimate of recent CPU consumption. It
	// orders the highest band only.
	recentBurst int64
	// burstTicks counts ticks consumed since the thread was last
	// dispatched; reset to zero at each dispatch.
	burstTicks       int64
	lastDispatchTick int64

	status Status
	space  AddressSpace
	ctx    *machine.Context

	released bool
}

// New returns a READY thread with zeroed accounting and no machine context.
// Attach a context before the thread can be dispatched.
func New(id int, name string, priority int) *Thread {
	return &Thread{
		id:       id,
		name:     name,
		priority: priority,
		status:   StatusReady,
	}
}

func (t *Thread) ID() int      { return t.id }
func (t *Thread) Name() string { return t.name }

func (t *Thread) Priority() int          { return t.priority }
func (t *Thread) SetPriority(p int)      { t.priority = p }
func (t *Thread) Status() Status         { return t.status }
func (t *Thread) SetStatus(s Status)     { t.status = s }
func (t *Thread) RecentBurst() int64     { return t.recentBurst }
func (t *Thread) SetRecentBurst(v int64) { t.recentBurst = v }

func (t *Thread) BurstTicks() int64           { return t.burstTicks }
func (t *Thread) ChargeTicks(n int64)         { t.burstTicks += n }
func (t *Thread) ResetBurstTicks()            { t.burstTicks = 0 }
func (t *Thread) LastDispatchTick() int64     { return t.lastDispatchTick }
func (t *Thread) SetLastDispatchTick(n int64) { t.lastDispatchTick = n }

// Space returns the thread's address space, or nil for kernel threads.
func (t *Thread) Space() AddressSpace      { return t.space }
func (t *Thread) SetSpace(sp AddressSpace) { t.space = sp }

// Context returns the thread's saved machine context.
func (t *Thread) Context() *machine.Context { return t.ctx }

// AttachContext binds the machine context backing this thread's execution.
func (t *Thread) AttachContext(ctx *machine.Context) { t.ctx = ctx }

// SaveUserState snapshots the user registers if the thread has an address
// space; a no-op for kernel threads.
func (t *Thread) SaveUserState() {
	if t.space != nil {
		t.space.SaveUserRegisters()
	}
}

// RestoreUserState reinstates the user register snapshot.
func (t *Thread) RestoreUserState() {
	if t.space != nil {
		t.space.RestoreUserRegisters()
	}
}

// CheckOverflow verifies the stack guard of the thread's context. A broken
// guard is fatal: the kernel cannot keep running on a corrupted stack.
func (t *Thread) CheckOverflow() {
	if t.ctx != nil && !t.ctx.FenceIntact() {
		panic(fmt.Sprintf("thread %q: stack overflow detected", t.name))
	}
}

// Released reports whether the thread's resources have been freed.
func (t *Thread) Released() bool { return t.released }

// Release frees the thread's resources: its address space and its machine
// context. It must be called exactly once, and only after control has
// switched away from the thread for the last time.
func (t *Thread) Release() {
	if t.released {
		panic(fmt.Sprintf("thread %q: released twice", t.name))
	}
	t.released = true
	if t.space != nil {
		t.space.Release()
		t.space = nil
	}
	if t.ctx != nil {
		t.ctx.Release()
		t.ctx = nil
	}
}
