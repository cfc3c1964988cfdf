package native

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/layout"
	"github.com/wippyai/qtbridge/qtypes"
	"go.bytecodealliance.org/wit"
	"golang.org/x/mod/semver"
)

// ABIVersion is the bridge ABI implemented by this runtime. Declarations
// must carry the same major version.
const ABIVersion = "v1.0.0"

// DispatchSymbol is the single change-notification entry point shared by
// every bound type.
const DispatchSymbol = "handlePropertyChange"

// PropertyDecl declares one bound property.
type PropertyDecl struct {
	Name string
	Ops  qtypes.Ops
}

// Hooks connect a declared type to its managed side. Every hook is optional.
type Hooks struct {
	// Attach creates the companion stored on a new object.
	Attach func() any

	// Initialise runs once, after Attach, before the object is observable.
	Initialise func(Pinned) error

	// Changed receives every effective property write, synchronously.
	Changed func(cpp Pinned, property int)

	// Updated receives coalesced update requests from ProcessEvents.
	Updated func(Ref)
}

// Declaration describes a native object type: its name, the ABI version it
// was generated against, its ordered property list and its hooks.
type Declaration struct {
	Type       string
	Version    string
	Properties []PropertyDecl
	Hooks      Hooks
}

// Symbols lists the exported names of a declared type.
type Symbols struct {
	Getters          []string
	Setters          []string
	Notifiers        []string
	Factory          string
	Initialiser      string
	CompanionFactory string
	Dispatch         string
}

// Index returns the index of the named property.
func (d *Declaration) Index(name string) (int, bool) {
	for i, p := range d.Properties {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Symbols derives the exported names from the type and property names.
func (d *Declaration) Symbols() Symbols {
	s := Symbols{
		Factory:          "new" + upperFirst(d.Type),
		Initialiser:      "initialise" + upperFirst(d.Type) + "Cpp",
		CompanionFactory: "create" + upperFirst(d.Type) + "Rs",
		Dispatch:         DispatchSymbol,
	}
	for _, p := range d.Properties {
		s.Getters = append(s.Getters, "get"+upperFirst(p.Name))
		s.Setters = append(s.Setters, "set"+upperFirst(p.Name))
		s.Notifiers = append(s.Notifiers, lowerFirst(p.Name)+"Changed")
	}
	return s
}

// StorageType describes the native object storage: a record with one field
// per property, in declaration order.
func (d *Declaration) StorageType() *wit.TypeDef {
	fields := make([]wit.Field, len(d.Properties))
	for i, p := range d.Properties {
		fields[i] = wit.Field{Name: p.Name, Type: p.Ops.Type()}
	}
	name := d.Type
	return &wit.TypeDef{Name: &name, Kind: &wit.Record{Fields: fields}}
}

// Layout computes the storage layout.
func (d *Declaration) Layout() layout.Info {
	return layout.NewCalculator().Calculate(d.StorageType())
}

// Validate checks the declaration against this runtime's ABI.
func (d *Declaration) Validate() error {
	if !isIdentifier(d.Type) {
		return errors.InvalidInput(errors.PhaseDeclare, fmt.Sprintf("invalid type name %q", d.Type))
	}
	if !semver.IsValid(d.Version) {
		return errors.New(errors.PhaseDeclare, errors.KindVersion).
			Path(d.Type).
			Detail("invalid ABI version %q", d.Version).
			Build()
	}
	if semver.Major(d.Version) != semver.Major(ABIVersion) {
		return errors.New(errors.PhaseDeclare, errors.KindVersion).
			Path(d.Type).
			Detail("ABI version %s is incompatible with runtime %s", d.Version, ABIVersion).
			Build()
	}
	if semver.Compare(d.Version, ABIVersion) > 0 {
		return errors.New(errors.PhaseDeclare, errors.KindVersion).
			Path(d.Type).
			Detail("ABI version %s is newer than runtime %s", d.Version, ABIVersion).
			Build()
	}

	seen := make(map[string]bool, len(d.Properties))
	for i, p := range d.Properties {
		if !isIdentifier(p.Name) {
			return errors.InvalidInput(errors.PhaseDeclare, fmt.Sprintf("%s: invalid property name %q at %d", d.Type, p.Name, i))
		}
		if seen[p.Name] {
			return errors.InvalidInput(errors.PhaseDeclare, fmt.Sprintf("%s: duplicate property %q", d.Type, p.Name))
		}
		seen[p.Name] = true
		if p.Ops == nil {
			return errors.NilPointer(errors.PhaseDeclare, []string{d.Type, p.Name}, "qtypes.Ops")
		}
	}
	return nil
}

// Describe renders the declaration's symbols and native layout.
func (d *Declaration) Describe() string {
	var b strings.Builder
	info := d.Layout()
	sym := d.Symbols()

	fmt.Fprintf(&b, "%s (ABI %s, %d bytes, align %d)\n", d.Type, d.Version, info.Size, info.Align)
	fmt.Fprintf(&b, "  factory     %s\n", sym.Factory)
	fmt.Fprintf(&b, "  initialiser %s\n", sym.Initialiser)
	fmt.Fprintf(&b, "  companion   %s\n", sym.CompanionFactory)
	fmt.Fprintf(&b, "  dispatch    %s\n", sym.Dispatch)
	for i, p := range d.Properties {
		f := info.Fields[i]
		fmt.Fprintf(&b, "  [%d] %-10s %-8s @%-3d %s / %s / %s\n",
			i, p.Name, p.Ops.Name(), f.Offset, sym.Getters[i], sym.Setters[i], sym.Notifiers[i])
	}
	return b.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
