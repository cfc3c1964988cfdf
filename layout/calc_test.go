package layout

import (
	"testing"

	"go.bytecodealliance.org/wit"
)

func TestCalculatePrimitives(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		typ   wit.Type
		name  string
		size  uint32
		align uint32
	}{
		{wit.Bool{}, "bool", 1, 1},
		{wit.U8{}, "u8", 1, 1},
		{wit.S8{}, "s8", 1, 1},
		{wit.U16{}, "u16", 2, 2},
		{wit.S16{}, "s16", 2, 2},
		{wit.U32{}, "u32", 4, 4},
		{wit.S32{}, "s32", 4, 4},
		{wit.F32{}, "f32", 4, 4},
		{wit.Char{}, "char", 4, 4},
		{wit.U64{}, "u64", 8, 8},
		{wit.S64{}, "s64", 8, 8},
		{wit.F64{}, "f64", 8, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := c.Calculate(tc.typ)
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.Align != tc.align {
				t.Errorf("align: got %d, want %d", info.Align, tc.align)
			}
			if got := TypeName(tc.typ); got != tc.name {
				t.Errorf("TypeName: got %q, want %q", got, tc.name)
			}
		})
	}
}

func TestCalculateRecord(t *testing.T) {
	c := NewCalculator()

	t.Run("empty", func(t *testing.T) {
		typedef := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{}}}
		info := c.Calculate(typedef)
		if info.Size != 0 {
			t.Errorf("size: got %d, want 0", info.Size)
		}
	})

	t.Run("mixed_alignment", func(t *testing.T) {
		typedef := &wit.TypeDef{
			Kind: &wit.Record{
				Fields: []wit.Field{
					{Name: "a", Type: wit.U8{}},
					{Name: "b", Type: wit.U32{}},
					{Name: "c", Type: wit.U8{}},
				},
			},
		}
		info := c.Calculate(typedef)

		want := map[string]uint32{"a": 0, "b": 4, "c": 8}
		for name, off := range want {
			if info.FieldOffs[name] != off {
				t.Errorf("field %s offset: got %d, want %d", name, info.FieldOffs[name], off)
			}
		}
		if info.Size != 12 {
			t.Errorf("size: got %d, want 12", info.Size)
		}
		if info.Align != 4 {
			t.Errorf("align: got %d, want 4", info.Align)
		}
		if len(info.Fields) != 3 || info.Fields[1].Name != "b" || info.Fields[1].Size != 4 {
			t.Errorf("ordered fields: got %+v", info.Fields)
		}
	})

	t.Run("nested_record", func(t *testing.T) {
		inner := &wit.TypeDef{
			Kind: &wit.Record{
				Fields: []wit.Field{
					{Name: "x", Type: wit.F64{}},
					{Name: "y", Type: wit.F64{}},
				},
			},
		}
		outer := &wit.TypeDef{
			Kind: &wit.Record{
				Fields: []wit.Field{
					{Name: "flag", Type: wit.Bool{}},
					{Name: "point", Type: inner},
				},
			},
		}
		info := c.Calculate(outer)
		if info.FieldOffs["point"] != 8 {
			t.Errorf("point offset: got %d, want 8", info.FieldOffs["point"])
		}
		if info.Size != 24 {
			t.Errorf("size: got %d, want 24", info.Size)
		}
	})
}

func TestCalculateTuple(t *testing.T) {
	c := NewCalculator()

	tuple := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.U64{}, wit.U8{}}}}
	info := c.Calculate(tuple)

	if info.Size != 24 {
		t.Errorf("size: got %d, want 24", info.Size)
	}
	if info.Align != 8 {
		t.Errorf("align: got %d, want 8", info.Align)
	}
}

func TestCalculateCaches(t *testing.T) {
	c := NewCalculator()
	typedef := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{{Name: "a", Type: wit.U32{}}}}}

	first := c.Calculate(typedef)
	second := c.Calculate(typedef)
	if first.Size != second.Size || len(c.cache) != 1 {
		t.Errorf("expected one cached entry, got %d", len(c.cache))
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uint32
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 8, 8},
		{7, 1, 7},
		{7, 0, 7},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.offset, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.offset, tt.align, got, tt.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	name := "QPointF"
	named := &wit.TypeDef{Name: &name, Kind: &wit.Record{}}
	if got := TypeName(named); got != "QPointF" {
		t.Errorf("TypeName(named) = %q", got)
	}

	anon := &wit.TypeDef{Kind: &wit.Record{Fields: []wit.Field{{Name: "x", Type: wit.F64{}}}}}
	if got := TypeName(anon); got != "record { x: f64 }" {
		t.Errorf("TypeName(anon) = %q", got)
	}
}
