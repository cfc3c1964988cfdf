package qtypes

import (
	"math"

	"github.com/wippyai/qtbridge/layout"
	"go.bytecodealliance.org/wit"
)

// QPointFType describes a native floating-point point.
var QPointFType = named("QPointF", record(
	wit.Field{Name: "x", Type: wit.F64{}},
	wit.Field{Name: "y", Type: wit.F64{}},
))

// QSizeFType describes a native floating-point size.
var QSizeFType = named("QSizeF", record(
	wit.Field{Name: "width", Type: wit.F64{}},
	wit.Field{Name: "height", Type: wit.F64{}},
))

var (
	qpointfLayout = layout.Of(QPointFType)
	qsizefLayout  = layout.Of(QSizeFType)
)

// QPointF is a point with double-precision coordinates. It has the same
// shape on both sides of the bridge and is passed by value.
type QPointF struct {
	X, Y float64
}

// NewQPointF constructs a point.
func NewQPointF(x, y float64) QPointF {
	return QPointF{X: x, Y: y}
}

// CopyPointF copies a point through a reference.
func CopyPointF(p *QPointF) QPointF {
	return *p
}

// CopyValuePointF copies a point passed by value.
func CopyValuePointF(p QPointF) QPointF {
	return p
}

// IsNull reports whether both coordinates are zero.
func (p QPointF) IsNull() bool {
	return p.X == 0 && p.Y == 0
}

// ManhattanLength returns |x| + |y|.
func (p QPointF) ManhattanLength() float64 {
	return math.Abs(p.X) + math.Abs(p.Y)
}

// LoadQPointF reads the point stored at s.
func LoadQPointF(s Slot) (QPointF, error) {
	x, err := s.Mem.ReadU64(s.Addr + qpointfLayout.FieldOffs["x"])
	if err != nil {
		return QPointF{}, err
	}
	y, err := s.Mem.ReadU64(s.Addr + qpointfLayout.FieldOffs["y"])
	if err != nil {
		return QPointF{}, err
	}
	return QPointF{X: math.Float64frombits(x), Y: math.Float64frombits(y)}, nil
}

// Store writes the point to s.
func (p QPointF) Store(s Slot) error {
	if err := s.Mem.WriteU64(s.Addr+qpointfLayout.FieldOffs["x"], math.Float64bits(p.X)); err != nil {
		return err
	}
	return s.Mem.WriteU64(s.Addr+qpointfLayout.FieldOffs["y"], math.Float64bits(p.Y))
}

// QSizeF is a size with double-precision dimensions, passed by value.
type QSizeF struct {
	Width, Height float64
}

// NewQSizeF constructs a size.
func NewQSizeF(w, h float64) QSizeF {
	return QSizeF{Width: w, Height: h}
}

// CopySizeF copies a size through a reference.
func CopySizeF(s *QSizeF) QSizeF {
	return *s
}

// CopyValueSizeF copies a size passed by value.
func CopyValueSizeF(s QSizeF) QSizeF {
	return s
}

// IsValid reports whether both dimensions are non-negative.
func (s QSizeF) IsValid() bool {
	return s.Width >= 0 && s.Height >= 0
}

// IsEmpty reports whether either dimension is zero or negative.
func (s QSizeF) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Transposed swaps width and height.
func (s QSizeF) Transposed() QSizeF {
	return QSizeF{Width: s.Height, Height: s.Width}
}

// LoadQSizeF reads the size stored at s.
func LoadQSizeF(s Slot) (QSizeF, error) {
	w, err := s.Mem.ReadU64(s.Addr + qsizefLayout.FieldOffs["width"])
	if err != nil {
		return QSizeF{}, err
	}
	h, err := s.Mem.ReadU64(s.Addr + qsizefLayout.FieldOffs["height"])
	if err != nil {
		return QSizeF{}, err
	}
	return QSizeF{Width: math.Float64frombits(w), Height: math.Float64frombits(h)}, nil
}

// Store writes the size to s.
func (sz QSizeF) Store(s Slot) error {
	if err := s.Mem.WriteU64(s.Addr+qsizefLayout.FieldOffs["width"], math.Float64bits(sz.Width)); err != nil {
		return err
	}
	return s.Mem.WriteU64(s.Addr+qsizefLayout.FieldOffs["height"], math.Float64bits(sz.Height))
}

// Codecs for the geometric value types.
var (
	PointFCodec Codec[QPointF] = pointFCodec{}
	SizeFCodec  Codec[QSizeF]  = sizeFCodec{}
)

type pointFCodec struct{}

func (pointFCodec) Name() string   { return "QPointF" }
func (pointFCodec) Type() wit.Type { return QPointFType }

func (pointFCodec) Construct(s Slot, v QPointF) error { return v.Store(s) }

func (pointFCodec) Read(s Slot) (QPointF, bool) {
	p, err := LoadQPointF(s)
	return p, err == nil
}

func (pointFCodec) Assign(dst, src Slot) error { return copyBytes(dst, src, qpointfLayout.Size) }
func (pointFCodec) Equal(a, b Slot) bool       { return equalBytes(a, b, qpointfLayout.Size) }
func (pointFCodec) Drop(s Slot)                { zeroBytes(s, qpointfLayout.Size) }

type sizeFCodec struct{}

func (sizeFCodec) Name() string   { return "QSizeF" }
func (sizeFCodec) Type() wit.Type { return QSizeFType }

func (sizeFCodec) Construct(s Slot, v QSizeF) error { return v.Store(s) }

func (sizeFCodec) Read(s Slot) (QSizeF, bool) {
	sz, err := LoadQSizeF(s)
	return sz, err == nil
}

func (sizeFCodec) Assign(dst, src Slot) error { return copyBytes(dst, src, qsizefLayout.Size) }
func (sizeFCodec) Equal(a, b Slot) bool       { return equalBytes(a, b, qsizefLayout.Size) }
func (sizeFCodec) Drop(s Slot)                { zeroBytes(s, qsizefLayout.Size) }
