package clock

import "testing"

func TestAdvance(t *testing.T) {
	c := New()
	if c.Now() != 0 {
		t.Fatalf("new clock at tick %d, want 0", c.Now())
	}

	if got := c.Advance(5); got != 5 {
		t.Errorf("Advance(5) = %d, want 5", got)
	}
	if got := c.Advance(0); got != 5 {
		t.Errorf("Advance(0) = %d, want 5", got)
	}
	if got := c.Advance(3); got != 8 {
		t.Errorf("Advance(3) = %d, want 8", got)
	}
	if c.Now() != 8 {
		t.Errorf("Now() = %d, want 8", c.Now())
	}
}

func TestAdvance_NegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Advance(-1) did not panic")
		}
	}()
	New().Advance(-1)
}
