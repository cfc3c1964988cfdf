// Package heap provides the native heap that native objects and their
// values live in.
//
// The heap is a WebAssembly linear memory hosted by wazero. A minimal module
// that only exports a memory is instantiated; Go code reads and writes it
// through the qtbridge.Memory interface. Addresses are plain offsets into
// that memory and never move, which is what makes native objects
// non-relocatable: the storage of an object stays at the same address until
// it is freed.
//
// # Allocation
//
// Heap implements qtbridge.Allocator and qtbridge.Reallocator with a
// first-fit free list in front of a bump pointer:
//
//	h, err := heap.New(ctx, heap.WithInitialPages(1), heap.WithMaxPages(16))
//	ptr, err := h.Alloc(64, 4)
//	ptr, err = h.Realloc(ptr, 64, 4, 256)
//	h.Free(ptr, 256, 4)
//
// Address 0 is never handed out and stands for null. When the bump pointer
// reaches the end of memory the heap grows by whole pages up to the limit;
// past that allocation fails with an allocation error.
//
// # Thread Safety
//
// Heap is NOT thread-safe. It belongs to the goroutine running the native
// event loop, like every object allocated in it.
package heap
