package qtypes

import (
	"github.com/wippyai/qtbridge/layout"
	"go.bytecodealliance.org/wit"
)

// ColorSpec is the native color model.
type ColorSpec uint32

const (
	SpecInvalid ColorSpec = iota
	SpecRgb
	SpecHsv
	SpecCmyk
	SpecHsl
	SpecExtendedRgb
)

func (s ColorSpec) String() string {
	switch s {
	case SpecInvalid:
		return "Invalid"
	case SpecRgb:
		return "Rgb"
	case SpecHsv:
		return "Hsv"
	case SpecCmyk:
		return "Cmyk"
	case SpecHsl:
		return "Hsl"
	case SpecExtendedRgb:
		return "ExtendedRgb"
	}
	return "Unknown"
}

// QColorType describes the native color: a spec followed by 16-bit channels.
var QColorType = named("QColor", record(
	wit.Field{Name: "spec", Type: wit.U32{}},
	wit.Field{Name: "alpha", Type: wit.U16{}},
	wit.Field{Name: "red", Type: wit.U16{}},
	wit.Field{Name: "green", Type: wit.U16{}},
	wit.Field{Name: "blue", Type: wit.U16{}},
	wit.Field{Name: "pad", Type: wit.U16{}},
))

var qcolorLayout = layout.Of(QColorType)

// QColor mirrors the native color value. Channels are 16-bit; an 8-bit
// channel c is stored as c * 0x101.
type QColor struct {
	Spec  ColorSpec
	Alpha uint16
	Red   uint16
	Green uint16
	Blue  uint16
}

// NewQColor builds an RGB native color from c.
func NewQColor(c Color) QColor {
	return QColor{
		Spec:  SpecRgb,
		Alpha: uint16(c.A) * 0x101,
		Red:   uint16(c.R) * 0x101,
		Green: uint16(c.G) * 0x101,
		Blue:  uint16(c.B) * 0x101,
	}
}

// IsValid reports whether the color has a model.
func (q QColor) IsValid() bool {
	return q.Spec != SpecInvalid
}

// ToGo converts to a Color. Only RGB colors have a Go representation.
func (q QColor) ToGo() (Color, bool) {
	if q.Spec != SpecRgb {
		return Color{}, false
	}
	return Color{
		A: uint8(q.Alpha >> 8),
		R: uint8(q.Red >> 8),
		G: uint8(q.Green >> 8),
		B: uint8(q.Blue >> 8),
	}, true
}

// LoadQColor reads the color stored at s.
func LoadQColor(s Slot) (QColor, error) {
	var q QColor
	spec, err := s.Mem.ReadU32(s.Addr + qcolorLayout.FieldOffs["spec"])
	if err != nil {
		return q, err
	}
	q.Spec = ColorSpec(spec)
	channels := []struct {
		name string
		dst  *uint16
	}{
		{"alpha", &q.Alpha},
		{"red", &q.Red},
		{"green", &q.Green},
		{"blue", &q.Blue},
	}
	for _, ch := range channels {
		v, err := s.Mem.ReadU16(s.Addr + qcolorLayout.FieldOffs[ch.name])
		if err != nil {
			return q, err
		}
		*ch.dst = v
	}
	return q, nil
}

// Store writes the color to s.
func (q QColor) Store(s Slot) error {
	if err := s.Mem.WriteU32(s.Addr+qcolorLayout.FieldOffs["spec"], uint32(q.Spec)); err != nil {
		return err
	}
	channels := []struct {
		name string
		v    uint16
	}{
		{"alpha", q.Alpha},
		{"red", q.Red},
		{"green", q.Green},
		{"blue", q.Blue},
		{"pad", 0},
	}
	for _, ch := range channels {
		if err := s.Mem.WriteU16(s.Addr+qcolorLayout.FieldOffs[ch.name], ch.v); err != nil {
			return err
		}
	}
	return nil
}

// ColorCodec is the codec for QColor properties.
var ColorCodec Codec[Color] = colorCodec{}

type colorCodec struct{}

func (colorCodec) Name() string   { return "QColor" }
func (colorCodec) Type() wit.Type { return QColorType }

func (colorCodec) Construct(s Slot, v Color) error {
	return NewQColor(v).Store(s)
}

func (colorCodec) Read(s Slot) (Color, bool) {
	q, err := LoadQColor(s)
	if err != nil {
		return Color{}, false
	}
	return q.ToGo()
}

func (colorCodec) Assign(dst, src Slot) error {
	return copyBytes(dst, src, qcolorLayout.Size)
}

func (colorCodec) Equal(a, b Slot) bool {
	return equalBytes(a, b, qcolorLayout.Size)
}

func (colorCodec) Drop(s Slot) {
	zeroBytes(s, qcolorLayout.Size)
}
