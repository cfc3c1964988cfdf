package qtypes

import (
	"math"
	"unicode/utf8"

	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/layout"
	"go.bytecodealliance.org/wit"
)

// QVariantType describes the native variant: a meta-type id followed by an
// inline payload large enough for a string header.
var QVariantType = named("QVariant", record(
	wit.Field{Name: "type-id", Type: wit.U32{}},
	wit.Field{Name: "data", Type: &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U32{}, wit.U32{}, wit.U32{}}}}},
))

var (
	qvariantLayout = layout.Of(QVariantType)
	qvariantTag    = qvariantLayout.FieldOffs["type-id"]
	qvariantData   = qvariantLayout.FieldOffs["data"]
)

// QVariant is a by-reference view of a native variant.
type QVariant struct {
	slot Slot
}

// QVariantAt views the variant stored at s.
func QVariantAt(s Slot) QVariant {
	return QVariant{slot: s}
}

// NewQVariant constructs a native variant from v in the uninitialized storage
// at s. A nil or unsupported case is rejected before anything is written.
func NewQVariant(s Slot, v Variant) (QVariant, error) {
	q := QVariant{slot: s}
	if err := checkVariant(v); err != nil {
		return q, err
	}
	if err := q.writePayload(v); err != nil {
		return q, err
	}
	return q, s.Mem.WriteU32(s.Addr+qvariantTag, v.TypeID())
}

// MustNewQVariant is NewQVariant for callers that treat an undeclared case
// as fatal. It panics with the diagnostic naming the case.
func MustNewQVariant(s Slot, v Variant) QVariant {
	q, err := NewQVariant(s, v)
	if err != nil {
		panic(err)
	}
	return q
}

func checkVariant(v Variant) error {
	switch c := v.(type) {
	case VariantNull, VariantBool, VariantInt, VariantDouble:
		return nil
	case VariantString:
		if !utf8.ValidString(string(c)) {
			return errors.New(errors.PhaseConstruct, errors.KindInvalidVariant).
				NativeType("QVariant").
				Value(c.TypeID()).
				Detail("string case is not valid UTF-8").
				Build()
		}
		return nil
	case VariantUnsupported:
		return errors.UnsupportedVariant(errors.PhaseConstruct, nil, c.ID)
	case nil:
		return errors.New(errors.PhaseConstruct, errors.KindInvalidVariant).
			NativeType("QVariant").
			Detail("nil variant").
			Build()
	default:
		return errors.UnsupportedVariant(errors.PhaseConstruct, nil, v.TypeID())
	}
}

// Slot returns the storage the view refers to.
func (q QVariant) Slot() Slot {
	return q.slot
}

// TypeID returns the native meta-type id.
func (q QVariant) TypeID() uint32 {
	tag, err := q.slot.Mem.ReadU32(q.slot.Addr + qvariantTag)
	if err != nil {
		return TypeIDInvalid
	}
	return tag
}

// IsNull reports whether the variant holds nothing.
func (q QVariant) IsNull() bool {
	return q.TypeID() == TypeIDInvalid
}

// ToGo converts to a Go Variant. An unknown type id yields
// VariantUnsupported with ok=false so callers can report the offending case.
func (q QVariant) ToGo() (Variant, bool) {
	tag, err := q.slot.Mem.ReadU32(q.slot.Addr + qvariantTag)
	if err != nil {
		return nil, false
	}
	data := q.slot.At(qvariantData)
	switch tag {
	case TypeIDInvalid:
		return VariantNull{}, true
	case TypeIDBool:
		b, ok := Bool.Read(data)
		return VariantBool(b), ok
	case TypeIDInt:
		i, ok := Int32.Read(data)
		return VariantInt(i), ok
	case TypeIDDouble:
		bits, err := data.Mem.ReadU64(data.Addr)
		if err != nil {
			return nil, false
		}
		return VariantDouble(math.Float64frombits(bits)), true
	case TypeIDQString:
		s, ok := QStringAt(data).ToGo()
		if !ok {
			return nil, false
		}
		return VariantString(s), true
	default:
		return VariantUnsupported{ID: tag}, false
	}
}

// Assign overwrites q with src. When both hold strings the existing buffer is
// reused; otherwise the old payload is dropped first.
func (q QVariant) Assign(src QVariant) error {
	if q.slot.Addr == src.slot.Addr {
		return nil
	}
	srcTag := src.TypeID()
	if q.TypeID() == TypeIDQString && srcTag == TypeIDQString {
		return QStringAt(q.slot.At(qvariantData)).Assign(QStringAt(src.slot.At(qvariantData)))
	}

	// Copy the source out before touching q in case the payloads alias.
	if srcTag == TypeIDQString {
		units, err := QStringAt(src.slot.At(qvariantData)).UTF16()
		if err != nil {
			return errors.Wrap(errors.PhaseAssign, errors.KindInvalidData, err, "read source variant")
		}
		q.Drop()
		if _, err := NewQStringUTF16(q.slot.At(qvariantData), units); err != nil {
			return err
		}
		return q.slot.Mem.WriteU32(q.slot.Addr+qvariantTag, srcTag)
	}

	data, err := src.slot.Mem.Read(src.slot.Addr, qvariantLayout.Size)
	if err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	q.Drop()
	return q.slot.Mem.Write(q.slot.Addr, buf)
}

// Set overwrites q with a Go variant.
func (q QVariant) Set(v Variant) error {
	if err := checkVariant(v); err != nil {
		return err
	}
	if s, ok := v.(VariantString); ok && q.TypeID() == TypeIDQString {
		return QStringAt(q.slot.At(qvariantData)).SetString(string(s))
	}
	q.Drop()
	if err := q.writePayload(v); err != nil {
		return err
	}
	return q.slot.Mem.WriteU32(q.slot.Addr+qvariantTag, v.TypeID())
}

// Equal compares type ids and payloads. Unknown cases compare by raw bytes.
func (q QVariant) Equal(o QVariant) bool {
	if q.slot.Addr == o.slot.Addr {
		return true
	}
	tag := q.TypeID()
	if tag != o.TypeID() {
		return false
	}
	switch tag {
	case TypeIDInvalid:
		return true
	case TypeIDBool:
		return Bool.Equal(q.slot.At(qvariantData), o.slot.At(qvariantData))
	case TypeIDQString:
		return QStringAt(q.slot.At(qvariantData)).Equal(QStringAt(o.slot.At(qvariantData)))
	default:
		return equalBytes(q.slot, o.slot, qvariantLayout.Size)
	}
}

// Drop releases a string payload and leaves a null variant.
func (q QVariant) Drop() {
	if q.TypeID() == TypeIDQString {
		QStringAt(q.slot.At(qvariantData)).Drop()
	}
	zeroBytes(q.slot, qvariantLayout.Size)
}

func (q QVariant) writePayload(v Variant) error {
	data := q.slot.At(qvariantData)
	switch c := v.(type) {
	case VariantNull:
		return nil
	case VariantBool:
		return Bool.Construct(data, bool(c))
	case VariantInt:
		return Int32.Construct(data, int32(c))
	case VariantDouble:
		return data.Mem.WriteU64(data.Addr, math.Float64bits(float64(c)))
	case VariantString:
		_, err := NewQString(data, string(c))
		return err
	}
	return errors.UnsupportedVariant(errors.PhaseConstruct, nil, v.TypeID())
}

// VariantCodec is the codec for QVariant properties.
var VariantCodec Codec[Variant] = variantCodec{}

type variantCodec struct{}

func (variantCodec) Name() string   { return "QVariant" }
func (variantCodec) Type() wit.Type { return QVariantType }

func (variantCodec) Construct(s Slot, v Variant) error {
	_, err := NewQVariant(s, v)
	return err
}

func (variantCodec) Read(s Slot) (Variant, bool) {
	return QVariantAt(s).ToGo()
}

func (variantCodec) Assign(dst, src Slot) error {
	return QVariantAt(dst).Assign(QVariantAt(src))
}

func (variantCodec) Equal(a, b Slot) bool {
	return QVariantAt(a).Equal(QVariantAt(b))
}

func (variantCodec) Drop(s Slot) {
	QVariantAt(s).Drop()
}
