// Package machine holds the machine-dependent boundary of the kernel: the
// saved execution context of a thread, the context-switch primitive, and the
// interrupt mask. Everything above this package is ordinary, testable Go;
// everything in here carries the suspend/resume contract that a real kernel
// would implement in assembly.
//
// In this simulated machine a thread's "stack" is a goroutine. A Context owns
// the goroutine's park/resume channel; the single run token travelling through
// those channels is what makes the machine a uniprocessor.
package machine

// stackFence is written into every context at creation and checked before a
// thread is switched out. A clobbered fence means the simulated stack guard
// was overwritten.
const stackFence uint32 = 0xdeadbeef

// Context is the opaque saved execution state of one thread. It is mutated
// only by Switcher.Switch and released exactly once, after the owning thread
// has stopped running on it.
type Context struct {
	resume  chan struct{}
	started bool
	fence   uint32

	// First-run bootstrap, in order: begin runs the scheduler's post-switch
	// cleanup, entry is the thread body, done must dispatch away forever.
	begin func()
	entry func()
	done  func()
}

// NewContext returns a fresh, not-yet-started context. The goroutine backing
// it is created lazily on the first switch into it; it then runs begin, entry
// and done in that order. done must never return.
func NewContext(begin, entry, done func()) *Context {
	return &Context{
		resume: make(chan struct{}, 1),
		fence:  stackFence,
		begin:  begin,
		entry:  entry,
		done:   done,
	}
}

// BootContext returns a context for the already-running caller, so the boot
// goroutine can take part in context switches like any other thread.
func BootContext() *Context {
	return &Context{
		resume:  make(chan struct{}, 1),
		started: true,
		fence:   stackFence,
	}
}

// FenceIntact reports whether the stack guard word is still in place.
func (c *Context) FenceIntact() bool {
	return c.fence == stackFence
}

// Release frees the context. If its goroutine is parked in a switch, the
// goroutine exits without ever resuming the thread's code; this is how a
// finished thread's stack is torn down after control has left it. Release
// must be called exactly once.
func (c *Context) Release() {
	close(c.resume)
}

// root is the entry point of the goroutine backing a context.
func (c *Context) root() {
	if c.begin != nil {
		c.begin()
	}
	c.entry()
	c.done()
	panic("machine: thread ran past its finish hook")
}
