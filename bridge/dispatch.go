package bridge

import (
	"fmt"

	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/native"
	"go.uber.org/zap"
)

// ChangeHandler is implemented by the companion of a bound type. P is the
// type's property identifier.
type ChangeHandler[P any] interface {
	HandlePropertyChange(w *Wrapper, property P)
}

// Dispatch delivers one change notification: it looks up the companion
// stored on the object and calls its handler once, synchronously. An object
// without a companion implementing ChangeHandler[P] violates the binding
// contract and Dispatch panics.
func Dispatch[P any](cpp native.Pinned, property P) {
	h, ok := cpp.Companion().(ChangeHandler[P])
	if !ok {
		panic(errors.New(errors.PhaseDispatch, errors.KindContractViolation).
			Path(cpp.Declaration().Type).
			GoType(fmt.Sprintf("%T", cpp.Companion())).
			Detail("companion of object %d does not handle %T", cpp.Handle(), property).
			Build())
	}
	Logger().Debug("dispatch property change",
		zap.String("type", cpp.Declaration().Type),
		zap.Uint64("handle", uint64(cpp.Handle())),
		zap.Any("property", property))
	h.HandlePropertyChange(NewWrapper(cpp.AsMut()), property)
}
