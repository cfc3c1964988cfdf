package qtypes

import (
	"bytes"

	qtbridge "github.com/wippyai/qtbridge"
	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/layout"
	"go.bytecodealliance.org/wit"
)

// Slot is a location in native memory holding one native value.
type Slot struct {
	Mem  qtbridge.NativeMemory
	Addr uint32
}

// At returns the slot at offset bytes past s.
func (s Slot) At(offset uint32) Slot {
	return Slot{Mem: s.Mem, Addr: s.Addr + offset}
}

// IsNull reports whether the slot has no storage.
func (s Slot) IsNull() bool {
	return s.Mem == nil || s.Addr == 0
}

// Ops is the type-erased half of the contract that the native side needs to
// store, compare and release values without knowing their Go shape.
type Ops interface {
	Name() string
	Type() wit.Type
	Assign(dst, src Slot) error
	Equal(a, b Slot) bool
	Drop(s Slot)
}

// Codec is the value conversion contract for a native type with Go
// equivalent M.
type Codec[M any] interface {
	Ops
	Construct(s Slot, v M) error
	Read(s Slot) (M, bool)
}

// Alloc reserves zeroed storage for one value described by ops.
func Alloc(mem qtbridge.NativeMemory, ops Ops) (Slot, error) {
	info := layout.Of(ops.Type())
	addr, err := mem.Alloc(info.Size, info.Align)
	if err != nil {
		return Slot{}, err
	}
	if addr == 0 {
		return Slot{}, errors.AllocationFailed(errors.PhaseAlloc, info.Size, info.Align)
	}
	return Slot{Mem: mem, Addr: addr}, nil
}

// Release drops the value in s and frees its storage.
func Release(s Slot, ops Ops) {
	if s.IsNull() {
		return
	}
	ops.Drop(s)
	info := layout.Of(ops.Type())
	s.Mem.Free(s.Addr, info.Size, info.Align)
}

func named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Name: &name, Kind: kind}
}

func record(fields ...wit.Field) *wit.Record {
	return &wit.Record{Fields: fields}
}

func copyBytes(dst, src Slot, size uint32) error {
	if dst.Addr == src.Addr {
		return nil
	}
	data, err := src.Mem.Read(src.Addr, size)
	if err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return dst.Mem.Write(dst.Addr, buf)
}

func equalBytes(a, b Slot, size uint32) bool {
	if a.Addr == b.Addr {
		return true
	}
	x, err := a.Mem.Read(a.Addr, size)
	if err != nil {
		return false
	}
	y, err := b.Mem.Read(b.Addr, size)
	if err != nil {
		return false
	}
	return bytes.Equal(x, y)
}

func zeroBytes(s Slot, size uint32) {
	_ = s.Mem.Write(s.Addr, make([]byte, size))
}
