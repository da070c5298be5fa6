package llvm_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"irforge/internal/backend/llvm"
	"irforge/internal/consts"
	"irforge/internal/diag"
	"irforge/internal/emit"
	"irforge/internal/ir"
	"irforge/internal/symbols"
	"irforge/internal/types"
)

// buildSample constructs the constants scenario: a global, a struct, three
// private constants and a main that returns the global.
func buildSample(t *testing.T) *ir.Module {
	t.Helper()
	m := ir.NewModule("ir-builder", "x86_64-unknown-linux-gnu")
	bi := m.Types.Builtins()
	pool := consts.NewPool(m.Types)
	syms := symbols.NewTable()
	syms.Reregister("main", ir.Prototype{Result: bi.I32})

	one, _ := pool.Int(bi.I32, 1)
	if _, err := m.DefineGlobal("global_a", one); err != nil {
		t.Fatal(err)
	}
	point := m.Types.DeclareStruct("struct.point")
	if err := m.Types.SetStructBody(point, []types.TypeID{bi.I32, bi.I32}); err != nil {
		t.Fatal(err)
	}

	s := emit.NewSession(m, syms)
	if _, err := s.Declare("main"); err != nil {
		t.Fatal(err)
	}
	_, err := s.DefineFunction("main",
		func(b *emit.Builder) (ir.Value, error) {
			var elems []consts.Constant
			for i := int64(1); i <= 4; i++ {
				c, _ := b.Pool().Int(bi.I32, i)
				elems = append(elems, c)
			}
			arr, err := b.Pool().Array(bi.I32, 4, elems)
			if err != nil {
				return ir.NoValue, err
			}
			return b.EmitConstantBacking(arr.Type, "init_array", arr)
		},
		func(b *emit.Builder) (ir.Value, error) {
			x, _ := b.Pool().Int(bi.I32, 1)
			y, _ := b.Pool().Int(bi.I32, 2)
			c, err := b.Pool().Struct(point, []consts.Constant{x, y})
			if err != nil {
				return ir.NoValue, err
			}
			return b.EmitConstantBacking(point, "point", c)
		},
		func(b *emit.Builder) (ir.Value, error) { return b.EmitString("hello", "string") },
		func(b *emit.Builder) (ir.Value, error) { return b.LoadGlobal("global_a") },
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestEmitModuleText(t *testing.T) {
	out, err := llvm.EmitModule(buildSample(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`source_filename = "ir-builder"`,
		`target triple = "x86_64-unknown-linux-gnu"`,
		`%struct.point = type { i32, i32 }`,
		`@global_a = dso_local global i32 1`,
		`@__constant.main.init_array = private constant [4 x i32] [i32 1, i32 2, i32 3, i32 4]`,
		`%struct.point { i32 1, i32 2 }`,
		`@.string = private unnamed_addr constant [6 x i8] c"hello\00", align 1`,
		`define dso_local i32 @main()`,
		`= load i32, `,
		`ret i32 %`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestEmitModuleIsDeterministic(t *testing.T) {
	m := buildSample(t)
	first, err := llvm.EmitModule(m)
	if err != nil {
		t.Fatal(err)
	}
	second, err := llvm.EmitModule(m)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated emission differs (-first +second):\n%s", diff)
	}
	rebuilt, err := llvm.EmitModule(buildSample(t))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, rebuilt); diff != "" {
		t.Fatalf("identical builds differ (-first +rebuilt):\n%s", diff)
	}
}

func TestEmitModuleRejectsUnverifiedBody(t *testing.T) {
	m := ir.NewModule("bad", "")
	bi := m.Types.Builtins()
	fn, err := m.NewFunc(&ir.Prototype{Name: "main", Result: bi.I32})
	if err != nil {
		t.Fatal(err)
	}
	entry := fn.NewBlock("entry")
	fn.Append(entry, ir.Instr{Op: ir.OpAlloca, Type: m.Types.Pointer(bi.I32), Elem: bi.I32}, true)

	out, err := llvm.EmitModule(m)
	if !errors.Is(err, diag.ErrVerification) {
		t.Fatalf("expected VerificationFailed, got %v", err)
	}
	if out != "" {
		t.Fatalf("no text may be produced for an invalid module, got %q", out)
	}
}

func TestStructNameCollisionsAndDeclarations(t *testing.T) {
	m := ir.NewModule("structs", "")
	bi := m.Types.Builtins()
	a := m.Types.DeclareStruct("pair")
	b := m.Types.DeclareStruct("pair")
	c := m.Types.DeclareStruct("pair")
	m.Types.DeclareStruct("handle")
	if err := m.Types.SetStructBody(c, []types.TypeID{bi.Double}); err != nil {
		t.Fatal(err)
	}
	if err := m.Types.SetStructBody(a, []types.TypeID{bi.I8, bi.I8}); err != nil {
		t.Fatal(err)
	}
	if err := m.Types.SetStructBody(b, []types.TypeID{bi.I64}); err != nil {
		t.Fatal(err)
	}
	syms := symbols.NewTable()
	syms.Reregister("printf", ir.Prototype{Result: bi.I32, Params: []types.TypeID{m.Types.Pointer(bi.I8)}, Variadic: true})
	if _, err := syms.DeclareFunction(m, "printf"); err != nil {
		t.Fatal(err)
	}

	out, err := llvm.EmitModule(m)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`%pair = type { i8, i8 }`,
		`%pair.0 = type { i64 }`,
		`%pair.1 = type { double }`,
		`%handle = type opaque`,
		`declare dso_local i32 @printf(`,
		`, ...)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
