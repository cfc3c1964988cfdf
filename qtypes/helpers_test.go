package qtypes

import (
	"context"
	"testing"

	"github.com/wippyai/qtbridge/heap"
)

func newTestHeap(t *testing.T) *heap.Heap {
	t.Helper()
	ctx := context.Background()
	h, err := heap.New(ctx)
	if err != nil {
		t.Fatalf("heap.New failed: %v", err)
	}
	t.Cleanup(func() { _ = h.Close(ctx) })
	return h
}

func newSlot(t *testing.T, h *heap.Heap, ops Ops) Slot {
	t.Helper()
	s, err := Alloc(h, ops)
	if err != nil {
		t.Fatalf("Alloc(%s) failed: %v", ops.Name(), err)
	}
	return s
}
