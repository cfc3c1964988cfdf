// Package styledobject binds StyledObject, a native type with one property
// per supported value type. Its companion counts changes and schedules a
// repaint whenever color or geometry changes.
package styledobject

import (
	"github.com/wippyai/qtbridge/bridge"
	"github.com/wippyai/qtbridge/native"
	"github.com/wippyai/qtbridge/qtypes"
	"go.uber.org/zap"
)

const TypeName = "StyledObject"

// Property identifies a bound property.
type Property int

const (
	Text Property = iota
	Enabled
	Opacity
	Color
	Position
	Size
	Value

	numProperties
)

var propertyNames = [numProperties]string{
	"text", "enabled", "opacity", "color", "position", "size", "value",
}

func (p Property) String() string {
	if p < 0 || p >= numProperties {
		return "unknown"
	}
	return propertyNames[p]
}

// Repaints reports whether a change of p needs the object redrawn.
func (p Property) Repaints() bool {
	return p == Color || p == Position || p == Size
}

// Declaration is the native declaration of StyledObject.
func Declaration() native.Declaration {
	ops := [numProperties]qtypes.Ops{
		Text:     qtypes.String,
		Enabled:  qtypes.Bool,
		Opacity:  qtypes.Float64,
		Color:    qtypes.ColorCodec,
		Position: qtypes.PointFCodec,
		Size:     qtypes.SizeFCodec,
		Value:    qtypes.VariantCodec,
	}
	props := make([]native.PropertyDecl, numProperties)
	for p := Property(0); p < numProperties; p++ {
		props[p] = native.PropertyDecl{Name: p.String(), Ops: ops[p]}
	}
	return native.Declaration{
		Type:       TypeName,
		Version:    native.ABIVersion,
		Properties: props,
	}
}

// Data is the snapshot of a StyledObject.
type Data struct {
	Text     string
	Enabled  bool
	Opacity  float64
	Color    qtypes.Color
	Position qtypes.QPointF
	Size     qtypes.QSizeF
	Value    qtypes.Variant
}

// DefaultData returns the documented defaults: enabled, fully opaque, black,
// at the origin with an empty size and a null value.
func DefaultData() Data {
	return Data{
		Enabled: true,
		Opacity: 1,
		Color:   qtypes.ColorBlack,
		Value:   qtypes.VariantNull{},
	}
}

var schema = bridge.NewSchema(DefaultData,
	bridge.Bind(int(Text), qtypes.String, func(d *Data) *string { return &d.Text }),
	bridge.Bind(int(Enabled), qtypes.Bool, func(d *Data) *bool { return &d.Enabled }),
	bridge.Bind(int(Opacity), qtypes.Float64, func(d *Data) *float64 { return &d.Opacity }),
	bridge.Bind(int(Color), qtypes.ColorCodec, func(d *Data) *qtypes.Color { return &d.Color }),
	bridge.Bind(int(Position), qtypes.PointFCodec, func(d *Data) *qtypes.QPointF { return &d.Position }),
	bridge.Bind(int(Size), qtypes.SizeFCodec, func(d *Data) *qtypes.QSizeF { return &d.Size }),
	bridge.Bind(int(Value), qtypes.VariantCodec, func(d *Data) *qtypes.Variant { return &d.Value }),
)

// Snapshot reads the current state of any reader of a StyledObject.
func Snapshot(r bridge.Reader) Data {
	return schema.Snapshot(r)
}

// Wrapper gives typed access to a pinned StyledObject.
type Wrapper struct {
	w *bridge.Wrapper
}

// NewWrapper wraps cpp for the duration of a callback.
func NewWrapper(cpp native.Pinned) *Wrapper {
	return &Wrapper{w: bridge.NewWrapper(cpp)}
}

func (w *Wrapper) Text() string {
	v, _ := bridge.Get(w.w, int(Text), qtypes.String)
	return v
}

func (w *Wrapper) SetText(v string) error {
	return bridge.Set(w.w, int(Text), qtypes.String, v)
}

func (w *Wrapper) Enabled() bool {
	v, _ := bridge.Get(w.w, int(Enabled), qtypes.Bool)
	return v
}

func (w *Wrapper) SetEnabled(v bool) error {
	return bridge.Set(w.w, int(Enabled), qtypes.Bool, v)
}

func (w *Wrapper) Opacity() float64 {
	v, _ := bridge.Get(w.w, int(Opacity), qtypes.Float64)
	return v
}

func (w *Wrapper) SetOpacity(v float64) error {
	return bridge.Set(w.w, int(Opacity), qtypes.Float64, v)
}

// Color reports false when the native color is not an RGB color.
func (w *Wrapper) Color() (qtypes.Color, bool) {
	return bridge.Get(w.w, int(Color), qtypes.ColorCodec)
}

func (w *Wrapper) SetColor(v qtypes.Color) error {
	return bridge.Set(w.w, int(Color), qtypes.ColorCodec, v)
}

func (w *Wrapper) Position() qtypes.QPointF {
	v, _ := bridge.Get(w.w, int(Position), qtypes.PointFCodec)
	return v
}

func (w *Wrapper) SetPosition(v qtypes.QPointF) error {
	return bridge.Set(w.w, int(Position), qtypes.PointFCodec, v)
}

func (w *Wrapper) Size() qtypes.QSizeF {
	v, _ := bridge.Get(w.w, int(Size), qtypes.SizeFCodec)
	return v
}

func (w *Wrapper) SetSize(v qtypes.QSizeF) error {
	return bridge.Set(w.w, int(Size), qtypes.SizeFCodec, v)
}

// Value reports false for a variant case Go cannot represent.
func (w *Wrapper) Value() (qtypes.Variant, bool) {
	return bridge.Get(w.w, int(Value), qtypes.VariantCodec)
}

// SetValue rejects VariantUnsupported and nil with an invalid_variant error.
func (w *Wrapper) SetValue(v qtypes.Variant) error {
	return bridge.Set(w.w, int(Value), qtypes.VariantCodec, v)
}

func (w *Wrapper) UpdateRequester() *native.UpdateRequester {
	return w.w.RequestUpdate()
}

// Apply writes every field of d in declaration order.
func (w *Wrapper) Apply(d Data) error {
	return schema.Apply(w.w, d)
}

// Data reads the current snapshot.
func (w *Wrapper) Data() Data {
	return schema.Snapshot(w.w)
}

// Styler is the companion of a StyledObject.
type Styler struct {
	Changes [numProperties]int
	Updates int
}

// CreateStyler returns a default companion.
func CreateStyler() *Styler {
	return &Styler{}
}

// HandlePropertyChange implements bridge.ChangeHandler.
func (s *Styler) HandlePropertyChange(w *bridge.Wrapper, p Property) {
	s.Changes[p]++
	bridge.Logger().Debug("styled property changed",
		zap.Uint64("handle", uint64(w.Handle())),
		zap.Stringer("property", p),
		zap.Int("count", s.Changes[p]))
	if p.Repaints() {
		w.RequestUpdate().Request()
	}
}

// Total returns the number of changes seen across all properties.
func (s *Styler) Total() int {
	n := 0
	for _, c := range s.Changes {
		n += c
	}
	return n
}

func update(r native.Ref) {
	if s, ok := r.Companion().(*Styler); ok {
		s.Updates++
	}
}

// Initialise seeds a new object with DefaultData.
func Initialise(cpp native.Pinned) error {
	return NewWrapper(cpp).Apply(DefaultData())
}

// Binding is the bridge binding of StyledObject.
func Binding() bridge.Binding[*Styler, Property] {
	return bridge.Binding[*Styler, Property]{
		Declaration: Declaration(),
		Create:      CreateStyler,
		Initialise:  Initialise,
		Update:      update,
	}
}

// Register declares StyledObject on rt unless it already is.
func Register(rt *native.Runtime) error {
	if _, ok := rt.Lookup(TypeName); ok {
		return nil
	}
	decl := Declaration()
	if err := schema.Validate(&decl); err != nil {
		return err
	}
	return bridge.Register(rt, Binding())
}

// StyledObject is a constructed instance.
type StyledObject struct {
	rt     *native.Runtime
	handle native.Handle
	styler *Styler
}

// New registers the type if needed and constructs an instance.
func New(rt *native.Runtime) (*StyledObject, error) {
	if err := Register(rt); err != nil {
		return nil, err
	}
	h, s, err := bridge.Construct[*Styler](rt, TypeName)
	if err != nil {
		return nil, err
	}
	return &StyledObject{rt: rt, handle: h, styler: s}, nil
}

func (o *StyledObject) Handle() native.Handle { return o.handle }
func (o *StyledObject) Styler() *Styler       { return o.styler }

// Enter runs fn with a wrapper around the pinned object.
func (o *StyledObject) Enter(fn func(*Wrapper) error) error {
	return o.rt.Enter(o.handle, func(cpp native.Pinned) error {
		return fn(NewWrapper(cpp))
	})
}

// Data reads the current snapshot through a shared reference.
func (o *StyledObject) Data() (Data, error) {
	var d Data
	err := o.rt.View(o.handle, func(r native.Ref) error {
		d = schema.Snapshot(r)
		return nil
	})
	return d, err
}

// Destroy destroys the native object.
func (o *StyledObject) Destroy() error {
	return o.rt.Destroy(o.handle)
}
