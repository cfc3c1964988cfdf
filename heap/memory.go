package heap

import "github.com/wippyai/qtbridge/errors"

// Read returns a view of length bytes at offset. The slice aliases native
// memory and is only valid until the next write or growth.
func (h *Heap) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := h.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseRead, nil, offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (h *Heap) Write(offset uint32, data []byte) error {
	if !h.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseAssign, nil, offset, uint32(len(data)))
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (h *Heap) ReadU8(offset uint32) (uint8, error) {
	v, ok := h.mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseRead, nil, offset, 1)
	}
	return v, nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (h *Heap) ReadU16(offset uint32) (uint16, error) {
	v, ok := h.mem.ReadUint16Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseRead, nil, offset, 2)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (h *Heap) ReadU32(offset uint32) (uint32, error) {
	v, ok := h.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseRead, nil, offset, 4)
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (h *Heap) ReadU64(offset uint32) (uint64, error) {
	v, ok := h.mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseRead, nil, offset, 8)
	}
	return v, nil
}

// WriteU8 writes an unsigned 8-bit value.
func (h *Heap) WriteU8(offset uint32, value uint8) error {
	if !h.mem.WriteByte(offset, value) {
		return errors.OutOfBounds(errors.PhaseAssign, nil, offset, 1)
	}
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (h *Heap) WriteU16(offset uint32, value uint16) error {
	if !h.mem.WriteUint16Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseAssign, nil, offset, 2)
	}
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (h *Heap) WriteU32(offset uint32, value uint32) error {
	if !h.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseAssign, nil, offset, 4)
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (h *Heap) WriteU64(offset uint32, value uint64) error {
	if !h.mem.WriteUint64Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseAssign, nil, offset, 8)
	}
	return nil
}
