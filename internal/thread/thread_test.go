package thread

import (
	"testing"

	"github.com/me/tos/internal/machine"
)

// recordingSpace logs calls so tests can assert the order and count of
// user-state operations.
type recordingSpace struct {
	ops []string
}

func (s *recordingSpace) SaveUserRegisters()    { s.ops = append(s.ops, "save_regs") }
func (s *recordingSpace) RestoreUserRegisters() { s.ops = append(s.ops, "restore_regs") }
func (s *recordingSpace) SaveState()            { s.ops = append(s.ops, "save_state") }
func (s *recordingSpace) RestoreState()         { s.ops = append(s.ops, "restore_state") }
func (s *recordingSpace) Release()              { s.ops = append(s.ops, "release") }

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusReady, "READY"},
		{StatusRunning, "RUNNING"},
		{StatusBlocked, "BLOCKED"},
		{StatusFinished, "FINISHED"},
		{Status(42), "Status(42)"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	th := New(7, "worker", 60)
	if th.ID() != 7 || th.Name() != "worker" || th.Priority() != 60 {
		t.Errorf("New() = id %d name %q priority %d", th.ID(), th.Name(), th.Priority())
	}
	if th.Status() != StatusReady {
		t.Errorf("new thread status = %v, want READY", th.Status())
	}
	if th.BurstTicks() != 0 || th.RecentBurst() != 0 || th.LastDispatchTick() != 0 {
		t.Error("new thread must start with zeroed accounting")
	}
}

func TestBurstAccounting(t *testing.T) {
	th := New(1, "t", 10)
	th.ChargeTicks(3)
	th.ChargeTicks(4)
	if th.BurstTicks() != 7 {
		t.Errorf("BurstTicks() = %d, want 7", th.BurstTicks())
	}
	th.ResetBurstTicks()
	if th.BurstTicks() != 0 {
		t.Errorf("BurstTicks() after reset = %d, want 0", th.BurstTicks())
	}
}

// TestUserState_KernelThreadNoOp verifies user-state hooks are safe without
// an address space.
func TestUserState_KernelThreadNoOp(t *testing.T) {
	th := New(1, "kernel", 10)
	th.SaveUserState()
	th.RestoreUserState()
}

func TestUserState_DelegatesToSpace(t *testing.T) {
	th := New(1, "user", 10)
	sp := &recordingSpace{}
	th.SetSpace(sp)

	th.SaveUserState()
	th.RestoreUserState()

	want := []string{"save_regs", "restore_regs"}
	if len(sp.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", sp.ops, want)
	}
	for i, w := range want {
		if sp.ops[i] != w {
			t.Fatalf("ops = %v, want %v", sp.ops, want)
		}
	}
}

// TestRelease verifies resources are freed once and in full.
func TestRelease(t *testing.T) {
	th := New(1, "t", 10)
	sp := &recordingSpace{}
	th.SetSpace(sp)
	th.AttachContext(machine.BootContext())

	if th.Released() {
		t.Fatal("fresh thread reports released")
	}
	th.Release()
	if !th.Released() {
		t.Error("Release did not mark the thread released")
	}
	if len(sp.ops) != 1 || sp.ops[0] != "release" {
		t.Errorf("space ops = %v, want [release]", sp.ops)
	}
	if th.Space() != nil || th.Context() != nil {
		t.Error("Release must detach the space and context")
	}
}

func TestRelease_TwicePanics(t *testing.T) {
	th := New(1, "t", 10)
	th.Release()
	defer func() {
		if recover() == nil {
			t.Error("second Release did not panic")
		}
	}()
	th.Release()
}

func TestCheckOverflow(t *testing.T) {
	th := New(1, "t", 10)
	th.CheckOverflow() // no context attached

	ctx := machine.BootContext()
	th.AttachContext(ctx)
	th.CheckOverflow() // fence intact
}
