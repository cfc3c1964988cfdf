package qtypes

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/layout"
	"go.bytecodealliance.org/wit"
)

// QStringType describes the native string header. The character data lives
// in a separately allocated buffer of cap UTF-16 code units.
var QStringType = named("QString", record(
	wit.Field{Name: "ptr", Type: wit.U32{}},
	wit.Field{Name: "len", Type: wit.U32{}},
	wit.Field{Name: "cap", Type: wit.U32{}},
))

var (
	qstringLayout = layout.Of(QStringType)
	qstringPtr    = qstringLayout.FieldOffs["ptr"]
	qstringLen    = qstringLayout.FieldOffs["len"]
	qstringCap    = qstringLayout.FieldOffs["cap"]
)

// MaxStringUnits bounds the length of a native string in code units.
const MaxStringUnits = 8 << 20

// QString is a by-reference view of a native string. It does not own the
// storage; the slot's owner decides when it is dropped.
type QString struct {
	slot Slot
}

// QStringAt views the string stored at s.
func QStringAt(s Slot) QString {
	return QString{slot: s}
}

// NewQString constructs a string from v in the uninitialized storage at s.
// v must be valid UTF-8; nothing is written otherwise.
func NewQString(s Slot, v string) (QString, error) {
	units, err := encodeString(errors.PhaseConstruct, v)
	if err != nil {
		return QString{slot: s}, err
	}
	return NewQStringUTF16(s, units)
}

func encodeString(phase errors.Phase, v string) ([]uint16, error) {
	if !utf8.ValidString(v) {
		return nil, errors.New(phase, errors.KindInvalidData).
			GoType("string").
			NativeType("QString").
			Detail("string is not valid UTF-8").
			Build()
	}
	return utf16.Encode([]rune(v)), nil
}

// NewQStringUTF16 constructs a string from raw code units. The units are
// stored as given, including unpaired surrogates.
func NewQStringUTF16(s Slot, units []uint16) (QString, error) {
	q := QString{slot: s}
	if len(units) > MaxStringUnits {
		return q, errors.Overflow(errors.PhaseConstruct, nil, len(units), "QString")
	}
	n := uint32(len(units))
	var ptr uint32
	if n > 0 {
		var err error
		ptr, err = s.Mem.Alloc(n*2, 2)
		if err != nil {
			return q, err
		}
		if err := s.Mem.Write(ptr, encodeUnits(units)); err != nil {
			s.Mem.Free(ptr, n*2, 2)
			return q, err
		}
	}
	if err := q.writeHeader(ptr, n, n); err != nil {
		if ptr != 0 {
			s.Mem.Free(ptr, n*2, 2)
		}
		return q, err
	}
	return q, nil
}

// Slot returns the storage the view refers to.
func (q QString) Slot() Slot {
	return q.slot
}

// Len returns the length in UTF-16 code units.
func (q QString) Len() int {
	_, n, _, err := q.header()
	if err != nil {
		return 0
	}
	return int(n)
}

// Cap returns the buffer capacity in code units.
func (q QString) Cap() int {
	_, _, c, err := q.header()
	if err != nil {
		return 0
	}
	return int(c)
}

// IsEmpty reports whether the string has no characters.
func (q QString) IsEmpty() bool {
	return q.Len() == 0
}

// UTF16 returns a copy of the code units.
func (q QString) UTF16() ([]uint16, error) {
	ptr, n, _, err := q.header()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	data, err := q.slot.Mem.Read(ptr, n*2)
	if err != nil {
		return nil, err
	}
	return decodeUnits(data), nil
}

// ToGo converts to a Go string. It reports false when the units are not
// well-formed UTF-16 or the storage cannot be read.
func (q QString) ToGo() (string, bool) {
	v, err := q.Decode()
	return v, err == nil
}

// Decode is ToGo with the reason for failure: an invalid_utf16 error naming
// the offending units, or the memory error.
func (q QString) Decode() (string, error) {
	units, err := q.UTF16()
	if err != nil {
		return "", err
	}
	if !validUTF16(units) {
		return "", errors.InvalidUTF16(errors.PhaseRead, nil, units)
	}
	return string(utf16.Decode(units)), nil
}

// String implements fmt.Stringer. Unrepresentable strings render empty.
func (q QString) String() string {
	s, _ := q.ToGo()
	return s
}

// Assign overwrites q with the contents of src. The existing buffer is reused
// when it is large enough and grown otherwise; the header stays where it is.
func (q QString) Assign(src QString) error {
	if q.slot.Addr == src.slot.Addr {
		return nil
	}
	units, err := src.UTF16()
	if err != nil {
		return errors.Wrap(errors.PhaseAssign, errors.KindInvalidData, err, "read source string")
	}
	return q.SetUTF16(units)
}

// SetString overwrites q with v. v must be valid UTF-8; q is left
// unchanged otherwise.
func (q QString) SetString(v string) error {
	units, err := encodeString(errors.PhaseAssign, v)
	if err != nil {
		return err
	}
	return q.SetUTF16(units)
}

// SetUTF16 overwrites q with raw code units.
func (q QString) SetUTF16(units []uint16) error {
	if len(units) > MaxStringUnits {
		return errors.Overflow(errors.PhaseAssign, nil, len(units), "QString")
	}
	ptr, _, capacity, err := q.header()
	if err != nil {
		return err
	}
	n := uint32(len(units))
	if n > capacity {
		ptr, err = q.slot.Mem.Realloc(ptr, capacity*2, 2, n*2)
		if err != nil {
			return err
		}
		capacity = n
	}
	if n > 0 {
		if err := q.slot.Mem.Write(ptr, encodeUnits(units)); err != nil {
			return err
		}
	}
	return q.writeHeader(ptr, n, capacity)
}

// Equal compares code units.
func (q QString) Equal(o QString) bool {
	if q.slot.Addr == o.slot.Addr {
		return true
	}
	a, errA := q.UTF16()
	b, errB := o.UTF16()
	if errA != nil || errB != nil || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Drop frees the character buffer and leaves an empty string behind.
func (q QString) Drop() {
	ptr, _, capacity, err := q.header()
	if err != nil {
		return
	}
	if ptr != 0 {
		q.slot.Mem.Free(ptr, capacity*2, 2)
	}
	_ = q.writeHeader(0, 0, 0)
}

func (q QString) header() (ptr, n, capacity uint32, err error) {
	if ptr, err = q.slot.Mem.ReadU32(q.slot.Addr + qstringPtr); err != nil {
		return
	}
	if n, err = q.slot.Mem.ReadU32(q.slot.Addr + qstringLen); err != nil {
		return
	}
	capacity, err = q.slot.Mem.ReadU32(q.slot.Addr + qstringCap)
	if err == nil && n > capacity {
		err = errors.InvalidData(errors.PhaseRead, nil, "string length exceeds capacity")
	}
	return
}

func (q QString) writeHeader(ptr, n, capacity uint32) error {
	if err := q.slot.Mem.WriteU32(q.slot.Addr+qstringPtr, ptr); err != nil {
		return err
	}
	if err := q.slot.Mem.WriteU32(q.slot.Addr+qstringLen, n); err != nil {
		return err
	}
	return q.slot.Mem.WriteU32(q.slot.Addr+qstringCap, capacity)
}

func encodeUnits(units []uint16) []byte {
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	return buf
}

func decodeUnits(data []byte) []uint16 {
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(data[i*2:])
	}
	return units
}

// validUTF16 rejects unpaired surrogates, which utf16.Decode would silently
// replace.
func validUTF16(units []uint16) bool {
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xd800 && u < 0xdc00:
			if i+1 >= len(units) || units[i+1] < 0xdc00 || units[i+1] >= 0xe000 {
				return false
			}
			i++
		case u >= 0xdc00 && u < 0xe000:
			return false
		}
	}
	return true
}

// String is the codec for QString properties.
var String Codec[string] = stringCodec{}

type stringCodec struct{}

func (stringCodec) Name() string   { return "QString" }
func (stringCodec) Type() wit.Type { return QStringType }

func (stringCodec) Construct(s Slot, v string) error {
	_, err := NewQString(s, v)
	return err
}

func (stringCodec) Read(s Slot) (string, bool) {
	return QStringAt(s).ToGo()
}

func (stringCodec) Assign(dst, src Slot) error {
	return QStringAt(dst).Assign(QStringAt(src))
}

func (stringCodec) Equal(a, b Slot) bool {
	return QStringAt(a).Equal(QStringAt(b))
}

func (stringCodec) Drop(s Slot) {
	QStringAt(s).Drop()
}
