package native

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/qtypes"
)

func testDeclaration() Declaration {
	return Declaration{
		Type:    "MyObject",
		Version: "v1.0.0",
		Properties: []PropertyDecl{
			{Name: "number", Ops: qtypes.Int32},
			{Name: "string", Ops: qtypes.String},
		},
	}
}

func TestDeclaration_Symbols(t *testing.T) {
	decl := testDeclaration()

	want := Symbols{
		Getters:          []string{"getNumber", "getString"},
		Setters:          []string{"setNumber", "setString"},
		Notifiers:        []string{"numberChanged", "stringChanged"},
		Factory:          "newMyObject",
		Initialiser:      "initialiseMyObjectCpp",
		CompanionFactory: "createMyObjectRs",
		Dispatch:         "handlePropertyChange",
	}
	if diff := cmp.Diff(want, decl.Symbols()); diff != "" {
		t.Errorf("Symbols mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclaration_Layout(t *testing.T) {
	decl := testDeclaration()
	info := decl.Layout()

	if info.Size != 16 || info.Align != 4 {
		t.Errorf("Layout = size %d align %d, want 16/4", info.Size, info.Align)
	}
	if info.FieldOffs["number"] != 0 || info.FieldOffs["string"] != 4 {
		t.Errorf("FieldOffs = %v", info.FieldOffs)
	}
}

func TestDeclaration_Index(t *testing.T) {
	decl := testDeclaration()
	if i, ok := decl.Index("string"); !ok || i != 1 {
		t.Errorf("Index(string) = %d, %v", i, ok)
	}
	if _, ok := decl.Index("missing"); ok {
		t.Error("Index(missing) reported found")
	}
}

func TestDeclaration_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Declaration)
		kind   errors.Kind
	}{
		{"valid", func(d *Declaration) {}, ""},
		{"prerelease", func(d *Declaration) { d.Version = "v1.0.0-rc.1" }, ""},
		{"empty_type", func(d *Declaration) { d.Type = "" }, errors.KindInvalidInput},
		{"bad_type", func(d *Declaration) { d.Type = "My Object" }, errors.KindInvalidInput},
		{"no_v_prefix", func(d *Declaration) { d.Version = "1.0.0" }, errors.KindVersion},
		{"major_mismatch", func(d *Declaration) { d.Version = "v2.0.0" }, errors.KindVersion},
		{"newer_minor", func(d *Declaration) { d.Version = "v1.3.0" }, errors.KindVersion},
		{"duplicate", func(d *Declaration) { d.Properties[1].Name = "number" }, errors.KindInvalidInput},
		{"digit_name", func(d *Declaration) { d.Properties[0].Name = "1st" }, errors.KindInvalidInput},
		{"nil_ops", func(d *Declaration) { d.Properties[0].Ops = nil }, errors.KindNilPointer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := testDeclaration()
			tt.modify(&decl)
			err := decl.Validate()
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("Validate failed: %v", err)
				}
				return
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDeclare, Kind: tt.kind}) {
				t.Errorf("Validate = %v, want kind %s", err, tt.kind)
			}
		})
	}
}
