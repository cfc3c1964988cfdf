// Package myobject binds the MyObject native type: an integer and a string
// property, a logging companion, and a default snapshot applied at
// initialisation.
package myobject

import (
	"github.com/wippyai/qtbridge/bridge"
	"github.com/wippyai/qtbridge/native"
	"github.com/wippyai/qtbridge/qtypes"
	"go.uber.org/zap"
)

// TypeName is the native type name.
const TypeName = "MyObject"

// Property identifies a bound property.
type Property int

const (
	Number Property = iota
	String
)

func (p Property) String() string {
	switch p {
	case Number:
		return "number"
	case String:
		return "string"
	}
	return "unknown"
}

// Declaration is the native declaration of MyObject.
func Declaration() native.Declaration {
	return native.Declaration{
		Type:    TypeName,
		Version: native.ABIVersion,
		Properties: []native.PropertyDecl{
			{Name: Number.String(), Ops: qtypes.Int32},
			{Name: String.String(), Ops: qtypes.String},
		},
	}
}

// Data is the snapshot of a MyObject.
type Data struct {
	Number int32
	String string
}

var schema = bridge.NewSchema[Data](nil,
	bridge.Bind(int(Number), qtypes.Int32, func(d *Data) *int32 { return &d.Number }),
	bridge.Bind(int(String), qtypes.String, func(d *Data) *string { return &d.String }),
)

// CppObjWrapper gives typed access to a pinned MyObject.
type CppObjWrapper struct {
	w *bridge.Wrapper
}

// NewWrapper wraps cpp for the duration of a callback.
func NewWrapper(cpp native.Pinned) *CppObjWrapper {
	return &CppObjWrapper{w: bridge.NewWrapper(cpp)}
}

// Number returns the number property.
func (c *CppObjWrapper) Number() int32 {
	v, _ := bridge.Get(c.w, int(Number), qtypes.Int32)
	return v
}

// SetNumber writes the number property.
func (c *CppObjWrapper) SetNumber(v int32) error {
	return bridge.Set(c.w, int(Number), qtypes.Int32, v)
}

// String returns the string property. It is empty when the native string
// is not valid UTF-16.
func (c *CppObjWrapper) String() string {
	v, _ := bridge.Get(c.w, int(String), qtypes.String)
	return v
}

// QString returns the by-reference view of the native string.
func (c *CppObjWrapper) QString() qtypes.QString {
	return qtypes.QStringAt(c.w.Slot(int(String)))
}

// SetString writes the string property.
func (c *CppObjWrapper) SetString(v string) error {
	return bridge.Set(c.w, int(String), qtypes.String, v)
}

// UpdateRequester returns the capability to schedule a refresh.
func (c *CppObjWrapper) UpdateRequester() *native.UpdateRequester {
	return c.w.RequestUpdate()
}

// GrabValuesFromData applies d.
func (c *CppObjWrapper) GrabValuesFromData(d Data) error {
	return schema.Apply(c.w, d)
}

// Data reads the current snapshot.
func (c *CppObjWrapper) Data() Data {
	return schema.Snapshot(c.w)
}

// RustObj is the companion of a MyObject. Its change handler only logs.
type RustObj struct{}

// CreateRustObj returns a default companion.
func CreateRustObj() *RustObj {
	return &RustObj{}
}

// HandlePropertyChange implements bridge.ChangeHandler.
func (r *RustObj) HandlePropertyChange(w *bridge.Wrapper, p Property) {
	bridge.Logger().Info("change",
		zap.String("type", TypeName),
		zap.Uint64("handle", uint64(w.Handle())),
		zap.Stringer("property", p))
}

// Initialise seeds a new object with the default snapshot.
func Initialise(cpp native.Pinned) error {
	return NewWrapper(cpp).GrabValuesFromData(Data{})
}

// Binding is the bridge binding of MyObject.
func Binding() bridge.Binding[*RustObj, Property] {
	return bridge.Binding[*RustObj, Property]{
		Declaration: Declaration(),
		Create:      CreateRustObj,
		Initialise:  Initialise,
	}
}

// Register declares MyObject on rt unless it already is.
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

// MyObject is a constructed instance.
type MyObject struct {
	rt        *native.Runtime
	handle    native.Handle
	companion *RustObj
}

// New registers the type if needed and constructs an instance.
func New(rt *native.Runtime) (*MyObject, error) {
	if err := Register(rt); err != nil {
		return nil, err
	}
	h, c, err := bridge.Construct[*RustObj](rt, TypeName)
	if err != nil {
		return nil, err
	}
	return &MyObject{rt: rt, handle: h, companion: c}, nil
}

// Handle returns the native handle.
func (o *MyObject) Handle() native.Handle { return o.handle }

// Companion returns the attached companion.
func (o *MyObject) Companion() *RustObj { return o.companion }

// Enter runs fn with a wrapper around the pinned object.
func (o *MyObject) Enter(fn func(*CppObjWrapper) error) error {
	return o.rt.Enter(o.handle, func(cpp native.Pinned) error {
		return fn(NewWrapper(cpp))
	})
}

// Data reads the current snapshot through a shared reference.
func (o *MyObject) Data() (Data, error) {
	var d Data
	err := o.rt.View(o.handle, func(r native.Ref) error {
		d = schema.Snapshot(r)
		return nil
	})
	return d, err
}

// Destroy destroys the native object.
func (o *MyObject) Destroy() error {
	return o.rt.Destroy(o.handle)
}
