package native

import (
	qtbridge "github.com/wippyai/qtbridge"
	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/layout"
	"github.com/wippyai/qtbridge/qtypes"
	"go.uber.org/zap"
)

// object is the native instance: fixed storage in the heap plus the
// companion attached at construction.
type object struct {
	rt        *Runtime
	class     *class
	handle    Handle
	addr      uint32
	companion any
	pins      int
	exclusive bool
	quiet     bool
	dead      bool
}

func (o *object) slot(index int) qtypes.Slot {
	if index < 0 || index >= len(o.class.info.Fields) {
		panic(errors.ContractViolation(errors.PhaseRuntime,
			"property index out of range for "+o.class.decl.Type))
	}
	return qtypes.Slot{Mem: o.rt.heap, Addr: o.addr + o.class.info.Fields[index].Offset}
}

// Ref is a shared, read-only view of a native object. It is only valid for
// the duration of the callback it was handed to.
type Ref struct {
	obj *object
}

// Handle returns the object's handle.
func (r Ref) Handle() Handle { return r.obj.handle }

// Declaration returns the object's type declaration.
func (r Ref) Declaration() *Declaration { return &r.obj.class.decl }

// Companion returns the companion attached at construction, or nil.
func (r Ref) Companion() any { return r.obj.companion }

// Slot returns the storage of the property at index for reading.
func (r Ref) Slot(index int) qtypes.Slot { return r.obj.slot(index) }

// UpdateRequester returns a capability that schedules a refresh of this
// object. It holds no reference to the object's storage.
func (r Ref) UpdateRequester() *UpdateRequester {
	return &UpdateRequester{rt: r.obj.rt, handle: r.obj.handle}
}

// Pinned is the exclusive, non-relocating capability to mutate a native
// object. At most one is live per object; it is valid only for the callback
// it was handed to.
type Pinned struct {
	obj *object
}

// AsRef downgrades to a shared view.
func (p Pinned) AsRef() Ref { return Ref(p) }

// AsMut reborrows the capability for a nested call. The caller must not use
// p while the reborrow is in use.
func (p Pinned) AsMut() Pinned { return p }

// Handle returns the object's handle.
func (p Pinned) Handle() Handle { return p.obj.handle }

// Declaration returns the object's type declaration.
func (p Pinned) Declaration() *Declaration { return &p.obj.class.decl }

// Companion returns the companion attached at construction, or nil.
func (p Pinned) Companion() any { return p.obj.companion }

// Slot returns the storage of the property at index.
func (p Pinned) Slot(index int) qtypes.Slot { return p.obj.slot(index) }

// Memory returns the heap the object lives in, for building temporary
// native values to pass to Set.
func (p Pinned) Memory() qtbridge.NativeMemory { return p.obj.rt.heap }

// UpdateRequester returns a capability that schedules a refresh of this
// object.
func (p Pinned) UpdateRequester() *UpdateRequester {
	return p.AsRef().UpdateRequester()
}

// Set is the native setter for the property at index. The value in src is
// compared with the stored value; if they differ it is assigned in place and
// the change notification fires before Set returns. Writing an equal value
// is a no-op and does not notify.
func (p Pinned) Set(index int, src qtypes.Slot) error {
	o := p.obj
	if o.dead {
		return errors.Closed(errors.PhaseAssign, "object "+o.class.decl.Type)
	}
	dst := o.slot(index)
	ops := o.class.decl.Properties[index].Ops
	if ops.Equal(dst, src) {
		return nil
	}
	if err := ops.Assign(dst, src); err != nil {
		return errors.New(errors.PhaseAssign, errors.KindInvalidData).
			Path(o.class.decl.Type, o.class.decl.Properties[index].Name).
			NativeType(ops.Name()).
			Cause(err).
			Build()
	}
	o.rt.changed(p, index)
	return nil
}

func (rt *Runtime) changed(p Pinned, index int) {
	o := p.obj
	if o.quiet {
		return
	}
	Logger().Debug("property changed",
		zap.String("type", o.class.decl.Type),
		zap.Uint64("handle", uint64(o.handle)),
		zap.String("property", o.class.decl.Properties[index].Name))
	rt.notify(Event{Type: EventChanged, Handle: o.handle, TypeName: o.class.decl.Type, Property: index})
	if h := o.class.decl.Hooks.Changed; h != nil {
		h(p.AsMut(), index)
	}
}

// class is a declared type with its computed storage layout.
type class struct {
	decl Declaration
	info layout.Info
}
