package syscalls

import (
	"testing"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
)

// TestGetUserMemorySize is scenario 4: call number 205 must
// return the user memory pool size (0x10000000) in r3.
func TestGetUserMemorySize(t *testing.T) {
	mem := memory.New(diag.Noop{})
	d := New(mem, diag.Noop{})

	ctx := &Context{}
	if err := d.Dispatch(lv2SysMemoryGetUserMemorySize, ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !ctx.Handled {
		t.Fatal("call 205 was not marked Handled")
	}
	if ctx.ReturnValue != 0x10000000 {
		t.Fatalf("ReturnValue = 0x%X, want 0x10000000", ctx.ReturnValue)
	}
}

func TestLV1CallNumberNormalization(t *testing.T) {
	mem := memory.New(diag.Noop{})
	d := New(mem, diag.Noop{})

	ctx := &Context{}
	if err := d.Dispatch(lv1GetVersion, ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !ctx.Handled {
		t.Fatal("lv1_get_version was not marked Handled")
	}
	if ctx.ReturnValue == 0 {
		t.Fatal("lv1_get_version returned zero")
	}
}

func TestUnregisteredCallReportsUnhandled(t *testing.T) {
	mem := memory.New(diag.Noop{})
	d := New(mem, diag.Noop{})

	ctx := &Context{}
	if err := d.Dispatch(999999, ctx); err != nil {
		t.Fatalf("Dispatch of unknown call returned error: %v", err)
	}
	if ctx.Handled {
		t.Fatal("unknown call number was marked Handled")
	}
}

func TestRegisterOverridesBuiltin(t *testing.T) {
	mem := memory.New(diag.Noop{})
	d := New(mem, diag.Noop{})

	d.Register(lv2SysMemoryGetUserMemorySize, "sys_memory_get_user_memory_size", func(ctx *Context, mem *memory.Manager) error {
		ctx.ReturnValue = 42
		return nil
	})

	ctx := &Context{}
	if err := d.Dispatch(lv2SysMemoryGetUserMemorySize, ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if ctx.ReturnValue != 42 {
		t.Fatalf("ReturnValue = %d, want 42 (override should win)", ctx.ReturnValue)
	}
}

func TestProcessGetPIDReturnsNonZero(t *testing.T) {
	mem := memory.New(diag.Noop{})
	d := New(mem, diag.Noop{})

	ctx := &Context{}
	if err := d.Dispatch(lv2ProcessGetPID, ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if ctx.ReturnValue == 0 {
		t.Fatal("process_getpid returned 0")
	}
}
