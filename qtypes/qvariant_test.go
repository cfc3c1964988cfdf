package qtypes

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wippyai/qtbridge/errors"
)

func TestQVariant_Cases(t *testing.T) {
	h := newTestHeap(t)

	tests := []struct {
		name   string
		value  Variant
		typeID uint32
	}{
		{"null", VariantNull{}, TypeIDInvalid},
		{"bool", VariantBool(true), TypeIDBool},
		{"int", VariantInt(-42), TypeIDInt},
		{"double", VariantDouble(3.25), TypeIDDouble},
		{"string", VariantString("hello"), TypeIDQString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSlot(t, h, VariantCodec)
			defer Release(s, VariantCodec)

			if err := VariantCodec.Construct(s, tt.value); err != nil {
				t.Fatalf("Construct failed: %v", err)
			}
			if id := QVariantAt(s).TypeID(); id != tt.typeID {
				t.Errorf("TypeID = %d, want %d", id, tt.typeID)
			}
			got, ok := VariantCodec.Read(s)
			if !ok {
				t.Fatal("Read reported absent")
			}
			if diff := cmp.Diff(tt.value, got); diff != "" {
				t.Errorf("Read mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQVariant_UnknownTagIsAbsent(t *testing.T) {
	h := newTestHeap(t)
	s := newSlot(t, h, VariantCodec)
	defer Release(s, VariantCodec)

	if err := h.WriteU32(s.Addr+qvariantTag, 64); err != nil {
		t.Fatalf("WriteU32 failed: %v", err)
	}
	got, ok := VariantCodec.Read(s)
	if ok {
		t.Fatal("Read reported present for unknown tag")
	}
	if diff := cmp.Diff(Variant(VariantUnsupported{ID: 64}), got); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}
}

func TestQVariant_ConstructUnsupported(t *testing.T) {
	h := newTestHeap(t)
	s := newSlot(t, h, VariantCodec)
	defer Release(s, VariantCodec)

	err := VariantCodec.Construct(s, VariantUnsupported{ID: 7})
	if err == nil {
		t.Fatal("expected error constructing unsupported case")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConstruct, Kind: errors.KindInvalidVariant}) {
		t.Errorf("unexpected error: %v", err)
	}
	if !QVariantAt(s).IsNull() {
		t.Error("slot written despite rejected case")
	}

	if err := VariantCodec.Construct(s, nil); err == nil {
		t.Error("expected error constructing nil variant")
	}

	err = VariantCodec.Construct(s, VariantString("bad\xff"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConstruct, Kind: errors.KindInvalidVariant}) {
		t.Errorf("invalid UTF-8 string case error = %v, want invalid_variant", err)
	}
	if !QVariantAt(s).IsNull() {
		t.Error("slot written despite invalid string")
	}

	if err := VariantCodec.Construct(s, VariantString("first")); err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	if err := QVariantAt(s).Set(VariantString("bad\xff")); err == nil {
		t.Error("Set with invalid UTF-8 succeeded")
	}
	if got, ok := VariantCodec.Read(s); !ok || got != Variant(VariantString("first")) {
		t.Errorf("Read = %v, %v; want unchanged string:first", got, ok)
	}
}

func TestMustNewQVariant_Panics(t *testing.T) {
	h := newTestHeap(t)
	s := newSlot(t, h, VariantCodec)
	defer Release(s, VariantCodec)

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustNewQVariant(s, VariantUnsupported{ID: 99})
}

func TestQVariant_AssignAcrossCases(t *testing.T) {
	h := newTestHeap(t)

	steps := []Variant{
		VariantString("first"),
		VariantString("a second, noticeably longer string"),
		VariantInt(5),
		VariantString("back to text"),
		VariantNull{},
	}

	dst := newSlot(t, h, VariantCodec)
	defer Release(dst, VariantCodec)
	if err := VariantCodec.Construct(dst, VariantNull{}); err != nil {
		t.Fatalf("Construct failed: %v", err)
	}

	for _, v := range steps {
		src := newSlot(t, h, VariantCodec)
		if err := VariantCodec.Construct(src, v); err != nil {
			t.Fatalf("Construct %v failed: %v", v, err)
		}
		if err := VariantCodec.Assign(dst, src); err != nil {
			t.Fatalf("Assign %v failed: %v", v, err)
		}
		if !VariantCodec.Equal(dst, src) {
			t.Errorf("Equal after Assign %v = false", v)
		}
		Release(src, VariantCodec)

		got, ok := VariantCodec.Read(dst)
		if !ok {
			t.Fatalf("Read after Assign %v reported absent", v)
		}
		if diff := cmp.Diff(v, got); diff != "" {
			t.Errorf("Read mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestQVariant_DropReleasesString(t *testing.T) {
	h := newTestHeap(t)
	s := newSlot(t, h, VariantCodec)
	live := h.Stats().Live

	if err := VariantCodec.Construct(s, VariantString("payload")); err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	if h.Stats().Live != live+1 {
		t.Fatalf("Live = %d, want %d", h.Stats().Live, live+1)
	}
	Release(s, VariantCodec)
	if h.Stats().Live != live-1 {
		t.Errorf("Live after Release = %d, want %d", h.Stats().Live, live-1)
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in   string
		want Variant
		ok   bool
	}{
		{"null", VariantNull{}, true},
		{"bool:true", VariantBool(true), true},
		{"int:12", VariantInt(12), true},
		{"double:1.5", VariantDouble(1.5), true},
		{"string:a:b", VariantString("a:b"), true},
		{"int:x", nil, false},
		{"weird", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseVariant(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseVariant(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			if ok && got.String() != tt.in {
				t.Errorf("String = %q, want %q", got.String(), tt.in)
			}
		})
	}
}
