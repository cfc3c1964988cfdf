package bridge

import (
	"fmt"

	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/native"
)

// Binding describes one bound type. C is the companion type and P the
// property identifier, whose values are the property indexes.
type Binding[C any, P ~int] struct {
	Declaration native.Declaration

	// Create builds a default companion. It must not touch any native
	// object.
	Create func() C

	// Initialise seeds a freshly linked object, typically by applying a
	// default snapshot. It runs exactly once per object.
	Initialise func(native.Pinned) error

	// Update is called when an update requested for the object is
	// delivered by the event loop.
	Update func(native.Ref)
}

// Register installs b on rt. The companion type must implement
// ChangeHandler[P].
func Register[C any, P ~int](rt *native.Runtime, b Binding[C, P]) error {
	if b.Create == nil {
		return errors.NilPointer(errors.PhaseDeclare, []string{b.Declaration.Type, "Create"}, "func() C")
	}
	var zero C
	if _, ok := any(zero).(ChangeHandler[P]); !ok {
		return errors.New(errors.PhaseDeclare, errors.KindContractViolation).
			Path(b.Declaration.Type).
			GoType(fmt.Sprintf("%T", zero)).
			Detail("companion does not implement ChangeHandler[%T]", P(0)).
			Build()
	}

	decl := b.Declaration
	decl.Hooks = native.Hooks{
		Attach:     func() any { return b.Create() },
		Initialise: b.Initialise,
		Changed: func(cpp native.Pinned, property int) {
			Dispatch(cpp, P(property))
		},
		Updated: b.Update,
	}
	return rt.Declare(decl)
}

// Construct builds a linked, initialised object of a registered type and
// returns its handle and companion.
func Construct[C any](rt *native.Runtime, typeName string) (native.Handle, C, error) {
	var zero C
	h, err := rt.Construct(typeName)
	if err != nil {
		return 0, zero, err
	}
	var companion C
	err = rt.View(h, func(r native.Ref) error {
		c, ok := r.Companion().(C)
		if !ok {
			return errors.TypeMismatch(errors.PhaseLifecycle, []string{typeName},
				fmt.Sprintf("%T", zero), fmt.Sprintf("%T", r.Companion()))
		}
		companion = c
		return nil
	})
	if err != nil {
		_ = rt.Destroy(h)
		return 0, zero, err
	}
	return h, companion, nil
}
