package bridge

import (
	qtbridge "github.com/wippyai/qtbridge"
	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/native"
	"github.com/wippyai/qtbridge/qtypes"
)

// Reader is anything that can expose a property's native storage for
// reading: native.Ref, native.Pinned and *Wrapper.
type Reader interface {
	Slot(index int) qtypes.Slot
}

// Wrapper wraps the pinned reference of one native callback. It must not
// outlive the callback.
type Wrapper struct {
	cpp native.Pinned
}

// NewWrapper wraps cpp. The caller guarantees cpp is live.
func NewWrapper(cpp native.Pinned) *Wrapper {
	return &Wrapper{cpp: cpp}
}

// Pinned returns the wrapped reference.
func (w *Wrapper) Pinned() native.Pinned { return w.cpp }

// Ref returns a shared view of the wrapped object.
func (w *Wrapper) Ref() native.Ref { return w.cpp.AsRef() }

// Handle returns the wrapped object's handle.
func (w *Wrapper) Handle() native.Handle { return w.cpp.Handle() }

// Slot implements Reader.
func (w *Wrapper) Slot(index int) qtypes.Slot { return w.cpp.Slot(index) }

// RequestUpdate returns a capability that schedules a native refresh of
// the object. It does not touch the object's storage.
func (w *Wrapper) RequestUpdate() *native.UpdateRequester {
	return w.cpp.UpdateRequester()
}

// Get reads the property at index through codec.
func Get[M any](r Reader, index int, codec qtypes.Codec[M]) (M, bool) {
	return codec.Read(r.Slot(index))
}

// Set converts v into a temporary native value and passes it to the native
// setter of the property at index.
func Set[M any](w *Wrapper, index int, codec qtypes.Codec[M], v M) error {
	if decl := w.cpp.Declaration(); index >= 0 && index < len(decl.Properties) {
		if ops := decl.Properties[index].Ops; ops.Name() != codec.Name() {
			return errors.TypeMismatch(errors.PhaseAssign,
				[]string{decl.Type, decl.Properties[index].Name}, codec.Name(), ops.Name())
		}
	}
	return MapValue(w.cpp.Memory(), codec, v, func(src qtypes.Slot) error {
		return w.cpp.Set(index, src)
	})
}

// MapValue constructs a temporary native value from v, calls fn with it and
// drops it. This is the managed to native parameter path.
func MapValue[M any](mem qtbridge.NativeMemory, codec qtypes.Codec[M], v M, fn func(qtypes.Slot) error) error {
	s, err := qtypes.Alloc(mem, codec)
	if err != nil {
		return err
	}
	defer qtypes.Release(s, codec)
	if err := codec.Construct(s, v); err != nil {
		return err
	}
	return fn(s)
}
