package heap

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	qtbridge "github.com/wippyai/qtbridge"
	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/layout"
)

// PageSize is the WebAssembly page size in bytes.
const PageSize = 65536

// reserved keeps the low addresses unused so that 0 can mean null.
const reserved = 16

const (
	DefaultInitialPages = 1
	DefaultMaxPages     = 256
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory" (6 bytes + string)
	0x02, 0x00, // kind: memory, index 0
}

var (
	_ qtbridge.NativeMemory = (*Heap)(nil)
	_ qtbridge.MemorySizer  = (*Heap)(nil)
)

type config struct {
	initialPages uint32
	maxPages     uint32
}

// Option configures a Heap.
type Option func(*config)

// WithInitialPages sets how many pages are committed up front.
func WithInitialPages(n uint32) Option {
	return func(c *config) { c.initialPages = n }
}

// WithMaxPages caps how far the heap may grow.
func WithMaxPages(n uint32) Option {
	return func(c *config) { c.maxPages = n }
}

type block struct {
	ptr  uint32
	size uint32
}

// Stats summarizes allocator state.
type Stats struct {
	Pages      uint32
	Live       int
	LiveBytes  uint32
	FreeBlocks int
	FreeBytes  uint32
	Top        uint32
}

// Heap is a wazero linear memory with an allocator on top.
type Heap struct {
	rt       wazero.Runtime
	mod      api.Module
	mem      api.Memory
	live     map[uint32]uint32
	free     []block
	top      uint32
	maxPages uint32
	closed   bool
}

// New instantiates the backing memory module and returns an empty heap.
func New(ctx context.Context, opts ...Option) (*Heap, error) {
	cfg := config{
		initialPages: DefaultInitialPages,
		maxPages:     DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.initialPages == 0 {
		cfg.initialPages = 1
	}
	if cfg.maxPages < cfg.initialPages {
		return nil, errors.InvalidInput(errors.PhaseAlloc, "max pages below initial pages")
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(cfg.maxPages))
	mod, err := rt.InstantiateWithConfig(ctx, memoryWASM, wazero.NewModuleConfig().WithName("qtbridge-heap"))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseAlloc, errors.KindAllocation, err, "instantiate heap memory")
	}

	mem := mod.Memory()
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotInitialized(errors.PhaseAlloc, "heap memory")
	}
	if cfg.initialPages > 1 {
		if _, ok := mem.Grow(cfg.initialPages - 1); !ok {
			_ = rt.Close(ctx)
			return nil, errors.AllocationFailed(errors.PhaseAlloc, (cfg.initialPages-1)*PageSize, PageSize)
		}
	}

	return &Heap{
		rt:       rt,
		mod:      mod,
		mem:      mem,
		live:     make(map[uint32]uint32),
		top:      reserved,
		maxPages: cfg.maxPages,
	}, nil
}

// Close releases the wazero runtime. All addresses become invalid.
func (h *Heap) Close(ctx context.Context) error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.live = nil
	h.free = nil
	return h.rt.Close(ctx)
}

// Size returns the current memory size in bytes.
func (h *Heap) Size() uint32 {
	return h.mem.Size()
}

// Alloc returns a zeroed block of at least size bytes aligned to align.
// A zero size yields the null address.
func (h *Heap) Alloc(size, align uint32) (uint32, error) {
	if h.closed {
		return 0, errors.Closed(errors.PhaseAlloc, "heap")
	}
	if size == 0 {
		return 0, nil
	}
	if align == 0 {
		align = 1
	}

	if ptr, ok := h.takeFree(size, align); ok {
		h.live[ptr] = size
		h.zero(ptr, size)
		return ptr, nil
	}

	ptr := layout.AlignTo(h.top, align)
	end := uint64(ptr) + uint64(size)
	if end > uint64(^uint32(0)) {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align)
	}
	if err := h.ensure(uint32(end)); err != nil {
		return 0, err
	}
	if ptr > h.top {
		h.release(block{ptr: h.top, size: ptr - h.top})
	}
	h.top = uint32(end)
	h.live[ptr] = size
	h.zero(ptr, size)
	return ptr, nil
}

// Free returns a block to the heap. Freeing null or an unknown address is a
// no-op.
func (h *Heap) Free(ptr, size, align uint32) {
	if h.closed || ptr == 0 {
		return
	}
	actual, ok := h.live[ptr]
	if !ok {
		return
	}
	delete(h.live, ptr)
	h.release(block{ptr: ptr, size: actual})
}

// Realloc resizes a block. It grows in place when the block ends at the bump
// pointer and otherwise moves the contents to a new block.
func (h *Heap) Realloc(ptr, oldSize, align, newSize uint32) (uint32, error) {
	if ptr == 0 {
		return h.Alloc(newSize, align)
	}
	if newSize == 0 {
		h.Free(ptr, oldSize, align)
		return 0, nil
	}
	actual, ok := h.live[ptr]
	if !ok {
		return 0, errors.InvalidInput(errors.PhaseAlloc, "realloc of unallocated block")
	}
	if newSize <= actual {
		return ptr, nil
	}

	if ptr+actual == h.top {
		end := uint64(ptr) + uint64(newSize)
		if end <= uint64(^uint32(0)) {
			if err := h.ensure(uint32(end)); err == nil {
				h.zero(ptr+actual, newSize-actual)
				h.top = uint32(end)
				h.live[ptr] = newSize
				return ptr, nil
			}
		}
	}

	next, err := h.Alloc(newSize, align)
	if err != nil {
		return 0, err
	}
	data, ok := h.mem.Read(ptr, actual)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseAlloc, nil, ptr, actual)
	}
	if !h.mem.Write(next, data) {
		return 0, errors.OutOfBounds(errors.PhaseAlloc, nil, next, actual)
	}
	h.Free(ptr, actual, align)
	return next, nil
}

// Stats reports the allocator state.
func (h *Heap) Stats() Stats {
	s := Stats{
		Pages:      h.mem.Size() / PageSize,
		Live:       len(h.live),
		FreeBlocks: len(h.free),
		Top:        h.top,
	}
	for _, size := range h.live {
		s.LiveBytes += size
	}
	for _, b := range h.free {
		s.FreeBytes += b.size
	}
	return s
}

func (h *Heap) takeFree(size, align uint32) (uint32, bool) {
	for i, b := range h.free {
		ptr := layout.AlignTo(b.ptr, align)
		if uint64(ptr)+uint64(size) > uint64(b.ptr)+uint64(b.size) {
			continue
		}
		h.free = append(h.free[:i], h.free[i+1:]...)
		if ptr > b.ptr {
			h.release(block{ptr: b.ptr, size: ptr - b.ptr})
		}
		if tail := b.ptr + b.size - (ptr + size); tail > 0 {
			h.release(block{ptr: ptr + size, size: tail})
		}
		return ptr, true
	}
	return 0, false
}

// release inserts a block into the free list, merging neighbours and
// folding a trailing block back into the bump region.
func (h *Heap) release(b block) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].ptr > b.ptr })
	h.free = append(h.free, block{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = b

	if i+1 < len(h.free) && h.free[i].ptr+h.free[i].size == h.free[i+1].ptr {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].ptr+h.free[i-1].size == h.free[i].ptr {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
	if last := len(h.free) - 1; last >= 0 && h.free[last].ptr+h.free[last].size == h.top {
		h.top = h.free[last].ptr
		h.free = h.free[:last]
	}
}

func (h *Heap) ensure(end uint32) error {
	size := h.mem.Size()
	if end <= size {
		return nil
	}
	need := (end - size + PageSize - 1) / PageSize
	if size/PageSize+need > h.maxPages {
		return errors.AllocationFailed(errors.PhaseAlloc, end-size, PageSize)
	}
	if _, ok := h.mem.Grow(need); !ok {
		return errors.AllocationFailed(errors.PhaseAlloc, need*PageSize, PageSize)
	}
	return nil
}

func (h *Heap) zero(ptr, size uint32) {
	if size == 0 {
		return
	}
	h.mem.Write(ptr, make([]byte, size))
}
