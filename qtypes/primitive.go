package qtypes

import (
	"math"

	"go.bytecodealliance.org/wit"
)

// Codecs for the primitive property types. Their native form is the plain
// little-endian value, so Read only fails when the slot is unreadable.
var (
	Int32   Codec[int32]   = int32Codec{}
	Bool    Codec[bool]    = boolCodec{}
	Float64 Codec[float64] = float64Codec{}
)

type int32Codec struct{}

func (int32Codec) Name() string   { return "qint32" }
func (int32Codec) Type() wit.Type { return wit.S32{} }

func (int32Codec) Construct(s Slot, v int32) error {
	return s.Mem.WriteU32(s.Addr, uint32(v))
}

func (int32Codec) Read(s Slot) (int32, bool) {
	v, err := s.Mem.ReadU32(s.Addr)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}

func (int32Codec) Assign(dst, src Slot) error { return copyBytes(dst, src, 4) }
func (int32Codec) Equal(a, b Slot) bool       { return equalBytes(a, b, 4) }
func (int32Codec) Drop(s Slot)                { zeroBytes(s, 4) }

type boolCodec struct{}

func (boolCodec) Name() string   { return "bool" }
func (boolCodec) Type() wit.Type { return wit.Bool{} }

func (boolCodec) Construct(s Slot, v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return s.Mem.WriteU8(s.Addr, b)
}

// Read treats any non-zero byte as true, as C++ does.
func (boolCodec) Read(s Slot) (bool, bool) {
	v, err := s.Mem.ReadU8(s.Addr)
	if err != nil {
		return false, false
	}
	return v != 0, true
}

func (boolCodec) Assign(dst, src Slot) error { return copyBytes(dst, src, 1) }

func (c boolCodec) Equal(a, b Slot) bool {
	x, okA := c.Read(a)
	y, okB := c.Read(b)
	return okA && okB && x == y
}

func (boolCodec) Drop(s Slot) { zeroBytes(s, 1) }

type float64Codec struct{}

func (float64Codec) Name() string   { return "qreal" }
func (float64Codec) Type() wit.Type { return wit.F64{} }

func (float64Codec) Construct(s Slot, v float64) error {
	return s.Mem.WriteU64(s.Addr, math.Float64bits(v))
}

func (float64Codec) Read(s Slot) (float64, bool) {
	v, err := s.Mem.ReadU64(s.Addr)
	if err != nil {
		return 0, false
	}
	return math.Float64frombits(v), true
}

func (float64Codec) Assign(dst, src Slot) error { return copyBytes(dst, src, 8) }

// Equal compares bit patterns so that NaN written twice is not a change.
func (float64Codec) Equal(a, b Slot) bool { return equalBytes(a, b, 8) }
func (float64Codec) Drop(s Slot)          { zeroBytes(s, 8) }
