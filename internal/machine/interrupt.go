package machine

// Level is the interrupt enable state of the simulated uniprocessor.
type Level int

const (
	// IntOff means interrupts are masked. On a uniprocessor this is the
	// mutual-exclusion token: any code running with interrupts off has
	// exclusive access to kernel state.
	IntOff Level = iota
	// IntOn means interrupts are enabled.
	IntOn
)

// String returns "off" or "on".
func (l Level) String() string {
	if l == IntOff {
		return "off"
	}
	return "on"
}

// Interrupt models the processor interrupt mask. The scheduler cannot use
// locks for mutual exclusion (waiting for a contested lock would re-enter the
// scheduler), so every scheduler entry point instead asserts that the caller
// has already masked interrupts.
//
// The machine boots with interrupts off.
type Interrupt struct {
	level Level
}

// NewInterrupt returns an interrupt controller in the IntOff state.
func NewInterrupt() *Interrupt {
	return &Interrupt{level: IntOff}
}

// SetLevel changes the interrupt mask and returns the previous level, so
// callers can restore it on the way out.
func (i *Interrupt) SetLevel(l Level) Level {
	old := i.level
	i.level = l
	return old
}

// Level returns the current interrupt mask.
func (i *Interrupt) Level() Level {
	return i.level
}

// Disabled reports whether interrupts are currently masked.
func (i *Interrupt) Disabled() bool {
	return i.level == IntOff
}
