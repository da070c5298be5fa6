package mpack_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"

	"irforge/internal/backend/llvm"
	"irforge/internal/backend/mpack"
	"irforge/internal/consts"
	"irforge/internal/diag"
	"irforge/internal/emit"
	"irforge/internal/ir"
	"irforge/internal/symbols"
	"irforge/internal/types"
)

func sampleModule(t *testing.T) *ir.Module {
	t.Helper()
	m := ir.NewModule("snap", "aarch64-apple-darwin")
	bi := m.Types.Builtins()
	pool := consts.NewPool(m.Types)
	pair := m.Types.DeclareStruct("pair")
	if err := m.Types.SetStructBody(pair, []types.TypeID{bi.I32, bi.Double}); err != nil {
		t.Fatal(err)
	}
	seven, _ := pool.Int(bi.I32, 7)
	if _, err := m.DefineGlobal("seven", seven); err != nil {
		t.Fatal(err)
	}

	syms := symbols.NewTable()
	syms.Reregister("main", ir.Prototype{Result: bi.I32})
	syms.Reregister("puts", ir.Prototype{Result: bi.I32, Params: []types.TypeID{m.Types.Pointer(bi.I8)}})
	s := emit.NewSession(m, syms)
	for _, name := range []string{"puts", "main"} {
		if _, err := s.Declare(name); err != nil {
			t.Fatal(err)
		}
	}
	_, err := s.DefineFunction("main",
		func(b *emit.Builder) (ir.Value, error) {
			x, _ := pool.Int(bi.I32, 1)
			y, _ := pool.Float(bi.Double, 2.5)
			c, err := pool.Struct(pair, []consts.Constant{x, y})
			if err != nil {
				return ir.NoValue, err
			}
			return b.EmitConstantBacking(pair, "p", c)
		},
		func(b *emit.Builder) (ir.Value, error) { return b.EmitString("hi", "greeting") },
		func(b *emit.Builder) (ir.Value, error) {
			cell, err := b.AllocateLocal(bi.I32, "acc")
			if err != nil {
				return ir.NoValue, err
			}
			g, err := b.LoadGlobal("seven")
			if err != nil {
				return ir.NoValue, err
			}
			sum, err := b.Add(g, ir.ConstValue(seven))
			if err != nil {
				return ir.NoValue, err
			}
			if err := b.Store(cell, sum); err != nil {
				return ir.NoValue, err
			}
			return b.Load(cell, bi.I32)
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestEncodeIsDeterministic(t *testing.T) {
	m := sampleModule(t)
	var a, b bytes.Buffer
	if err := mpack.Encode(&a, m); err != nil {
		t.Fatal(err)
	}
	if err := mpack.Encode(&b, sampleModule(t)); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("equal modules produced different snapshots")
	}
}

func TestRestoreRendersIdentically(t *testing.T) {
	m := sampleModule(t)
	want, err := llvm.EmitModule(m)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := mpack.Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	snap, err := mpack.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "snap" || len(snap.Funcs) != 2 || len(snap.Globals) != 3 {
		t.Fatalf("unexpected snapshot header: %s, %d funcs, %d globals", snap.Name, len(snap.Funcs), len(snap.Globals))
	}
	restored, err := snap.Restore()
	if err != nil {
		t.Fatal(err)
	}
	got, err := llvm.EmitModule(restored)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("restored module renders differently (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	snap := mpack.Capture(sampleModule(t))
	snap.Schema = mpack.SchemaVersion + 1
	data, err := msgpack.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mpack.Decode(bytes.NewReader(data)); err == nil {
		t.Fatal("expected a schema error")
	}
}

func TestEncodeRejectsInvalidModule(t *testing.T) {
	m := ir.NewModule("bad", "")
	fn, err := m.NewFunc(&ir.Prototype{Name: "f", Result: m.Types.Void()})
	if err != nil {
		t.Fatal(err)
	}
	fn.NewBlock("entry")

	var buf bytes.Buffer
	if err := mpack.Encode(&buf, m); !errors.Is(err, diag.ErrVerification) {
		t.Fatalf("expected VerificationFailed, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("wrote %d bytes for an invalid module", buf.Len())
	}
}

func TestRestoreRejectsCyclicTypeRecords(t *testing.T) {
	tests := []struct {
		name string
		rec  func(self types.TypeID) mpack.TypeRecord
	}{
		{"pointer to itself", func(self types.TypeID) mpack.TypeRecord {
			return mpack.TypeRecord{Kind: types.KindPointer, Elem: self}
		}},
		{"array of a later type", func(self types.TypeID) mpack.TypeRecord {
			return mpack.TypeRecord{Kind: types.KindArray, Elem: self + 1, Count: 2}
		}},
		{"fn returning itself", func(self types.TypeID) mpack.TypeRecord {
			return mpack.TypeRecord{Kind: types.KindFn, Result: self}
		}},
		{"fn with an invalid parameter", func(self types.TypeID) mpack.TypeRecord {
			return mpack.TypeRecord{Kind: types.KindFn, Result: 1, Params: []types.TypeID{types.NoTypeID}}
		}},
		{"zero-width int", func(types.TypeID) mpack.TypeRecord {
			return mpack.TypeRecord{Kind: types.KindInt, Width: 0}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := mpack.Capture(sampleModule(t))
			self := types.TypeID(len(snap.Types))
			snap.Types = append(snap.Types, tt.rec(self))
			snap.Funcs = append(snap.Funcs, mpack.FuncRecord{Name: "loop", Result: self})
			if _, err := snap.Restore(); err == nil {
				t.Fatal("expected the type table to be rejected")
			}
		})
	}
}

func TestRestoreRejectsGlobalsOfUnknownType(t *testing.T) {
	snap := mpack.Capture(sampleModule(t))
	snap.Globals[0].Type = types.TypeID(len(snap.Types) + 5)
	if _, err := snap.Restore(); err == nil {
		t.Fatal("expected an unknown global type to be rejected")
	}
}
