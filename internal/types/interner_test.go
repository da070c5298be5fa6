package types

import (
	"errors"
	"testing"

	"irforge/internal/diag"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Void == NoTypeID || b.I32 == NoTypeID || b.Double == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	i32, _ := in.Lookup(b.I32)
	if i32.Kind != KindInt || i32.Width != Width32 {
		t.Fatalf("expected i32, got %+v", i32)
	}
	if in.Int(32) != b.I32 || in.Float(64) != b.Double {
		t.Fatalf("interning must return builtin identities")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	arr1 := in.Array(in.Int(32), 4)
	arr2 := in.Array(in.Int(32), 4)
	if arr1 == NoTypeID || arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
	if in.Array(in.Int(32), 5) == arr1 {
		t.Fatalf("arrays of different length must differ")
	}
	if in.Pointer(arr1) != in.Pointer(arr2) {
		t.Fatalf("pointer types should be deduplicated")
	}
}

func TestInvalidWidthsAreRejected(t *testing.T) {
	in := NewInterner()
	for _, w := range []uint{0, 65, 128} {
		if in.Int(w) != NoTypeID {
			t.Fatalf("Int(%d) should be rejected", w)
		}
	}
	if in.Float(16) != NoTypeID {
		t.Fatalf("half precision is not supported")
	}
	if in.Array(in.Void(), 2) != NoTypeID {
		t.Fatalf("arrays of void must be rejected")
	}
}

func TestStructsAreNominal(t *testing.T) {
	in := NewInterner()
	a := in.DeclareStruct("struct.point")
	b := in.DeclareStruct("struct.point")
	if a == b {
		t.Fatalf("two struct declarations must never be unified")
	}
	i32 := in.Builtins().I32
	if err := in.SetStructBody(a, []TypeID{i32, i32}); err != nil {
		t.Fatalf("SetStructBody: %v", err)
	}
	if err := in.SetStructBody(b, []TypeID{i32, i32}); err != nil {
		t.Fatalf("SetStructBody: %v", err)
	}
	if a == b {
		t.Fatalf("identical bodies must not unify nominal structs")
	}
	if got := in.Structs(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("unexpected declaration order %v", got)
	}
}

func TestSetStructBodyTwiceFails(t *testing.T) {
	in := NewInterner()
	st := in.DeclareStruct("struct.point")
	i32 := in.Builtins().I32
	if err := in.SetStructBody(st, []TypeID{i32}); err != nil {
		t.Fatalf("first SetStructBody: %v", err)
	}
	err := in.SetStructBody(st, []TypeID{i32, i32})
	if !errors.Is(err, diag.ErrRedefinedStruct) {
		t.Fatalf("expected RedefinedStruct, got %v", err)
	}
	if got := in.StructFields(st); len(got) != 1 {
		t.Fatalf("body must stay immutable, got %v", got)
	}
	fields := in.StructFields(st)
	fields[0] = in.Builtins().I8
	if in.StructFields(st)[0] != i32 {
		t.Fatalf("StructFields must return a copy")
	}
}

func TestFnSignaturesAreInterned(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	f1 := in.Fn(b.I32, []TypeID{b.I8, b.I64}, false)
	f2 := in.Fn(b.I32, []TypeID{b.I8, b.I64}, false)
	f3 := in.Fn(b.I32, []TypeID{b.I8, b.I64}, true)
	if f1 != f2 {
		t.Fatalf("identical signatures should be interned")
	}
	if f1 == f3 {
		t.Fatalf("variadic flag must affect identity")
	}
	if info, ok := in.FnInfo(f3); !ok || !info.Variadic || len(info.Params) != 2 {
		t.Fatalf("unexpected fn info %+v", info)
	}
}

func TestString(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	st := in.DeclareStruct("struct.point")
	cases := map[TypeID]string{
		b.I32:                                  "i32",
		b.Float:                                "float",
		in.Array(b.I32, 4):                     "[4 x i32]",
		in.Pointer(in.Array(b.I8, 6)):          "[6 x i8]*",
		st:                                     "%struct.point",
		in.Fn(b.I32, []TypeID{in.Pointer(b.I8)}, true): "i32 (i8*, ...)",
		NoTypeID:                               "<invalid>",
	}
	for id, want := range cases {
		if got := in.String(id); got != want {
			t.Errorf("String(%d) = %q, want %q", id, got, want)
		}
	}
}

func TestStructInfoIsACopy(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	point := in.DeclareStruct("point")
	if err := in.SetStructBody(point, []TypeID{b.I32, b.I32}); err != nil {
		t.Fatal(err)
	}

	info, ok := in.StructInfo(point)
	if !ok {
		t.Fatalf("StructInfo(point) not found")
	}
	info.Fields[0] = b.Double
	info.HasBody = false

	fields := in.StructFields(point)
	if len(fields) != 2 || fields[0] != b.I32 || fields[1] != b.I32 {
		t.Fatalf("fields changed through the copy: %v", fields)
	}
	if err := in.SetStructBody(point, []TypeID{b.I8}); !errors.Is(err, diag.ErrRedefinedStruct) {
		t.Fatalf("body must stay set, got %v", err)
	}
}
