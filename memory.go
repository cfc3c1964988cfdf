package qtbridge

// Memory is the native side's addressable storage. Offsets are stable for the
// lifetime of the allocation they belong to.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of native memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator allocates blocks in native memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Reallocator resizes a block, moving it when it cannot grow in place.
// The returned pointer replaces ptr; ptr must not be used afterwards.
type Reallocator interface {
	Allocator
	Realloc(ptr, oldSize, align, newSize uint32) (uint32, error)
}

// NativeMemory is everything a native value needs to live in: addressable
// storage plus an allocator for out-of-line buffers.
type NativeMemory interface {
	Memory
	Reallocator
}
