package heap

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/qtbridge/errors"
)

func newTestHeap(t *testing.T, opts ...Option) *Heap {
	t.Helper()
	ctx := context.Background()
	h, err := New(ctx, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = h.Close(ctx) })
	return h
}

func TestHeap_ReadWrite(t *testing.T) {
	h := newTestHeap(t)

	data := []byte{1, 2, 3, 4}
	if err := h.Write(32, data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	read, err := h.Read(32, 4)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(read, data) {
		t.Errorf("Read = %v, want %v", read, data)
	}
}

func TestHeap_OutOfBounds(t *testing.T) {
	h := newTestHeap(t)

	if _, err := h.Read(h.Size(), 1); err == nil {
		t.Error("expected error for out of bounds read")
	}
	err := h.Write(h.Size(), []byte{1})
	if err == nil {
		t.Fatal("expected error for out of bounds write")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseAssign, Kind: errors.KindOutOfBounds}) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHeap_IntegerReadWrite(t *testing.T) {
	h := newTestHeap(t)

	if err := h.WriteU8(64, 42); err != nil {
		t.Fatalf("WriteU8 failed: %v", err)
	}
	if v, _ := h.ReadU8(64); v != 42 {
		t.Errorf("ReadU8: expected 42, got %d", v)
	}

	if err := h.WriteU16(64, 0x1234); err != nil {
		t.Fatalf("WriteU16 failed: %v", err)
	}
	if v, _ := h.ReadU16(64); v != 0x1234 {
		t.Errorf("ReadU16: expected 0x1234, got 0x%x", v)
	}

	if err := h.WriteU32(64, 0x12345678); err != nil {
		t.Fatalf("WriteU32 failed: %v", err)
	}
	if v, _ := h.ReadU32(64); v != 0x12345678 {
		t.Errorf("ReadU32: expected 0x12345678, got 0x%x", v)
	}

	if err := h.WriteU64(64, 0x123456789ABCDEF0); err != nil {
		t.Fatalf("WriteU64 failed: %v", err)
	}
	if v, _ := h.ReadU64(64); v != 0x123456789ABCDEF0 {
		t.Errorf("ReadU64: expected 0x123456789ABCDEF0, got 0x%x", v)
	}
}

func TestHeap_AllocAlignment(t *testing.T) {
	h := newTestHeap(t)

	tests := []struct {
		size  uint32
		align uint32
	}{
		{3, 1},
		{12, 4},
		{16, 8},
		{5, 2},
		{24, 8},
	}

	for _, tt := range tests {
		ptr, err := h.Alloc(tt.size, tt.align)
		if err != nil {
			t.Fatalf("Alloc(%d, %d) failed: %v", tt.size, tt.align, err)
		}
		if ptr == 0 {
			t.Errorf("Alloc(%d, %d) returned null", tt.size, tt.align)
		}
		if ptr%tt.align != 0 {
			t.Errorf("Alloc(%d, %d) = %#x, not aligned", tt.size, tt.align, ptr)
		}
	}
}

func TestHeap_AllocZeroSize(t *testing.T) {
	h := newTestHeap(t)

	ptr, err := h.Alloc(0, 4)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if ptr != 0 {
		t.Errorf("Alloc(0) = %#x, want null", ptr)
	}
	h.Free(0, 0, 4)
}

func TestHeap_FreeReuse(t *testing.T) {
	h := newTestHeap(t)

	a, _ := h.Alloc(64, 4)
	b, _ := h.Alloc(64, 4)
	if a == b {
		t.Fatal("distinct allocations share an address")
	}

	h.Free(a, 64, 4)
	c, err := h.Alloc(32, 4)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if c != a {
		t.Errorf("expected freed block %#x to be reused, got %#x", a, c)
	}
}

func TestHeap_FreeCoalesces(t *testing.T) {
	h := newTestHeap(t)

	a, _ := h.Alloc(64, 4)
	b, _ := h.Alloc(32, 8)

	h.Free(b, 32, 8)
	h.Free(a, 64, 4)

	s := h.Stats()
	if s.Live != 0 {
		t.Errorf("Live = %d, want 0", s.Live)
	}
	if s.FreeBlocks != 0 {
		t.Errorf("FreeBlocks = %d, want 0 after folding into bump region", s.FreeBlocks)
	}
	if s.Top != reserved {
		t.Errorf("Top = %d, want %d", s.Top, reserved)
	}
}

func TestHeap_AllocZeroesReusedBlock(t *testing.T) {
	h := newTestHeap(t)

	a, _ := h.Alloc(8, 4)
	_, _ = h.Alloc(8, 4)
	if err := h.Write(a, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	h.Free(a, 8, 4)

	c, _ := h.Alloc(8, 4)
	data, _ := h.Read(c, 8)
	if !bytes.Equal(data, make([]byte, 8)) {
		t.Errorf("reused block not zeroed: %v", data)
	}
}

func TestHeap_ReallocInPlace(t *testing.T) {
	h := newTestHeap(t)

	a, _ := h.Alloc(16, 4)
	if err := h.WriteU32(a, 0xCAFEBABE); err != nil {
		t.Fatalf("WriteU32 failed: %v", err)
	}

	b, err := h.Realloc(a, 16, 4, 64)
	if err != nil {
		t.Fatalf("Realloc failed: %v", err)
	}
	if b != a {
		t.Errorf("Realloc of top block moved from %#x to %#x", a, b)
	}
	if v, _ := h.ReadU32(b); v != 0xCAFEBABE {
		t.Errorf("contents lost: 0x%x", v)
	}
}

func TestHeap_ReallocMoves(t *testing.T) {
	h := newTestHeap(t)

	a, _ := h.Alloc(16, 4)
	_, _ = h.Alloc(16, 4)
	if err := h.Write(a, []byte("0123456789abcdef")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	b, err := h.Realloc(a, 16, 4, 128)
	if err != nil {
		t.Fatalf("Realloc failed: %v", err)
	}
	if b == a {
		t.Fatal("expected Realloc to move a block that is not at the top")
	}
	data, _ := h.Read(b, 16)
	if string(data) != "0123456789abcdef" {
		t.Errorf("contents = %q", data)
	}
	if s := h.Stats(); s.Live != 2 {
		t.Errorf("Live = %d, want 2", s.Live)
	}
}

func TestHeap_ReallocShrinkKeepsBlock(t *testing.T) {
	h := newTestHeap(t)

	a, _ := h.Alloc(64, 4)
	b, err := h.Realloc(a, 64, 4, 8)
	if err != nil {
		t.Fatalf("Realloc failed: %v", err)
	}
	if b != a {
		t.Errorf("shrinking realloc moved block")
	}
}

func TestHeap_Growth(t *testing.T) {
	h := newTestHeap(t, WithMaxPages(2))

	if _, err := h.Alloc(PageSize, 1); err != nil {
		t.Fatalf("Alloc within limit failed: %v", err)
	}
	if got := h.Stats().Pages; got != 2 {
		t.Errorf("Pages = %d, want 2", got)
	}

	_, err := h.Alloc(PageSize, 1)
	if err == nil {
		t.Fatal("expected allocation past the page limit to fail")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindAllocation}) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHeap_InitialPages(t *testing.T) {
	h := newTestHeap(t, WithInitialPages(3), WithMaxPages(4))
	if got := h.Size(); got != 3*PageSize {
		t.Errorf("Size = %d, want %d", got, 3*PageSize)
	}
}

func TestNew_InvalidLimits(t *testing.T) {
	_, err := New(context.Background(), WithInitialPages(4), WithMaxPages(2))
	if err == nil {
		t.Fatal("expected error when max pages is below initial pages")
	}
}

func TestHeap_AllocAfterClose(t *testing.T) {
	ctx := context.Background()
	h, err := New(ctx)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := h.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err = h.Alloc(8, 4)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindClosed}) {
		t.Errorf("unexpected error: %v", err)
	}
}
