package bridge

import (
	"fmt"

	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/native"
	"github.com/wippyai/qtbridge/qtypes"
	"go.uber.org/zap"
)

// Field binds one property of the native object to one field of the
// snapshot type S.
type Field[S any] interface {
	// Index is the property index in the declaration.
	Index() int

	// Codec returns the type-erased conversion ops.
	Codec() qtypes.Ops

	apply(w *Wrapper, s *S) error
	load(r Reader, s *S) bool
}

type field[S, M any] struct {
	index    int
	codec    qtypes.Codec[M]
	accessor func(*S) *M
}

// Bind creates a field that maps property index, converted by codec, to
// the snapshot field returned by accessor.
func Bind[S, M any](index int, codec qtypes.Codec[M], accessor func(*S) *M) Field[S] {
	return &field[S, M]{index: index, codec: codec, accessor: accessor}
}

func (f *field[S, M]) Index() int        { return f.index }
func (f *field[S, M]) Codec() qtypes.Ops { return f.codec }

func (f *field[S, M]) apply(w *Wrapper, s *S) error {
	return Set(w, f.index, f.codec, *f.accessor(s))
}

func (f *field[S, M]) load(r Reader, s *S) bool {
	v, ok := Get(r, f.index, f.codec)
	if !ok {
		return false
	}
	*f.accessor(s) = v
	return true
}

// Schema is the property table of the snapshot type S.
type Schema[S any] struct {
	// Default returns the snapshot with every field at its documented
	// default. A nil Default means the zero value.
	Default func() S

	Fields []Field[S]
}

// NewSchema builds a schema from a default constructor and fields. The
// field order is the order Apply writes in.
func NewSchema[S any](def func() S, fields ...Field[S]) *Schema[S] {
	return &Schema[S]{Default: def, Fields: fields}
}

// Zero returns the default snapshot.
func (sc *Schema[S]) Zero() S {
	if sc.Default == nil {
		var zero S
		return zero
	}
	return sc.Default()
}

// Apply writes every field of s through the native setters, in table
// order. Each setter may fire a change notification before the next field
// is written. It stops at the first error.
func (sc *Schema[S]) Apply(w *Wrapper, s S) error {
	for _, f := range sc.Fields {
		if err := f.apply(w, &s); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot reads every field. A property whose native value has no Go
// representation keeps the field's default, so the result is always fully
// populated.
func (sc *Schema[S]) Snapshot(r Reader) S {
	s := sc.Zero()
	for _, f := range sc.Fields {
		if !f.load(r, &s) {
			Logger().Debug("snapshot field unreadable, using default",
				zap.Int("property", f.Index()),
				zap.String("native_type", f.Codec().Name()))
		}
	}
	return s
}

// Validate checks that the table matches decl: every index is in range,
// bound once, and converts with the property's declared native type.
func (sc *Schema[S]) Validate(decl *native.Declaration) error {
	seen := make(map[int]bool, len(sc.Fields))
	for _, f := range sc.Fields {
		i := f.Index()
		if i < 0 || i >= len(decl.Properties) {
			return errors.InvalidInput(errors.PhaseDeclare,
				fmt.Sprintf("%s: property index %d out of range (%d properties)", decl.Type, i, len(decl.Properties)))
		}
		if seen[i] {
			return errors.InvalidInput(errors.PhaseDeclare,
				fmt.Sprintf("%s: property %q bound twice", decl.Type, decl.Properties[i].Name))
		}
		seen[i] = true
		if got, want := f.Codec().Name(), decl.Properties[i].Ops.Name(); got != want {
			return errors.TypeMismatch(errors.PhaseDeclare, []string{decl.Type, decl.Properties[i].Name}, got, want)
		}
	}
	return nil
}
