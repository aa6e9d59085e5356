package machine

import "runtime"

// Switcher transfers the CPU between two contexts.
type Switcher interface {
	// Switch suspends the calling thread (whose context is out) and resumes
	// in. The call does not return until some future Switch hands the CPU
	// back to out, which may never happen if out is released first.
	Switch(out, in *Context)
}

// GoroutineSwitcher implements Switch on top of goroutines: resuming a
// context hands it the run token, and the caller parks on its own channel.
// There is exactly one token in flight, so at most one thread executes
// kernel or thread code at any moment.
type GoroutineSwitcher struct{}

// Switch hands the CPU from out to in.
//
// The incoming side is woken first; the outgoing side then parks. The only
// instruction the outgoing thread executes after the wake-up is the park
// itself, and the channel send orders its prior writes before the incoming
// thread's reads, so the handoff is race-free.
func (GoroutineSwitcher) Switch(out, in *Context) {
	if !in.started {
		in.started = true
		go in.root()
	} else {
		in.resume <- struct{}{}
	}

	if _, ok := <-out.resume; !ok {
		// Context was released while we were parked: the thread finished
		// and its resources have been reclaimed. Tear the stack down here,
		// without resuming the dead thread's code.
		runtime.Goexit()
	}
}
