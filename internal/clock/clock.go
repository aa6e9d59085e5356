// Package clock provides the global simulated tick counter shared by the
// scheduler, the alarm, and the trace output.
package clock

// Clock is a monotonically increasing tick counter. It never goes backwards;
// the only mutation is Advance.
type Clock struct {
	ticks int64
}

// New returns a clock starting at tick zero.
func New() *Clock {
	return &Clock{}
}

// Now returns the current tick.
func (c *Clock) Now() int64 {
	return c.ticks
}

// Advance moves the clock forward by n ticks and returns the new value.
// n must be non-negative.
func (c *Clock) Advance(n int64) int64 {
	if n < 0 {
		panic("clock: negative advance")
	}
	c.ticks += n
	return c.ticks
}
