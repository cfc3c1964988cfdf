package qtypes

import (
	"fmt"
	"strconv"
	"strings"
)

// Meta-type ids stored in the native variant tag.
const (
	TypeIDInvalid uint32 = 0
	TypeIDBool    uint32 = 1
	TypeIDInt     uint32 = 2
	TypeIDDouble  uint32 = 6
	TypeIDQString uint32 = 10
)

// Variant is the Go side of a native tagged union. The set of cases is
// closed; VariantUnsupported stands for any native case outside it.
type Variant interface {
	TypeID() uint32
	String() string
	isVariant()
}

// VariantNull is an empty variant.
type VariantNull struct{}

// VariantBool holds a boolean.
type VariantBool bool

// VariantInt holds a 32-bit integer.
type VariantInt int32

// VariantDouble holds a double.
type VariantDouble float64

// VariantString holds a string.
type VariantString string

// VariantUnsupported is a native variant whose type id has no Go case. It is
// only ever produced by reads; constructing a native value from it fails.
type VariantUnsupported struct {
	ID uint32
}

func (VariantNull) TypeID() uint32          { return TypeIDInvalid }
func (VariantBool) TypeID() uint32          { return TypeIDBool }
func (VariantInt) TypeID() uint32           { return TypeIDInt }
func (VariantDouble) TypeID() uint32        { return TypeIDDouble }
func (VariantString) TypeID() uint32        { return TypeIDQString }
func (v VariantUnsupported) TypeID() uint32 { return v.ID }

func (VariantNull) String() string     { return "null" }
func (v VariantBool) String() string   { return "bool:" + strconv.FormatBool(bool(v)) }
func (v VariantInt) String() string    { return "int:" + strconv.FormatInt(int64(v), 10) }
func (v VariantDouble) String() string { return "double:" + strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v VariantString) String() string { return "string:" + string(v) }
func (v VariantUnsupported) String() string {
	return fmt.Sprintf("unsupported(%d)", v.ID)
}

func (VariantNull) isVariant()        {}
func (VariantBool) isVariant()        {}
func (VariantInt) isVariant()         {}
func (VariantDouble) isVariant()      {}
func (VariantString) isVariant()      {}
func (VariantUnsupported) isVariant() {}

// ParseVariant reads the String form back: "null", "bool:true", "int:5",
// "double:1.5" or "string:text".
func ParseVariant(s string) (Variant, bool) {
	if s == "null" {
		return VariantNull{}, true
	}
	kind, value, found := strings.Cut(s, ":")
	if !found {
		return nil, false
	}
	switch kind {
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, false
		}
		return VariantBool(b), true
	case "int":
		i, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, false
		}
		return VariantInt(int32(i)), true
	case "double":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, false
		}
		return VariantDouble(f), true
	case "string":
		return VariantString(value), true
	}
	return nil, false
}
