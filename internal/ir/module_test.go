package ir

import (
	"errors"
	"testing"

	"irforge/internal/consts"
	"irforge/internal/diag"
)

func i32(t *testing.T, m *Module, v int64) consts.Constant {
	t.Helper()
	c, err := consts.NewPool(m.Types).Int(m.Types.Builtins().I32, v)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDefineGlobalOnce(t *testing.T) {
	m := NewModule("test", "")
	g, err := m.DefineGlobal("global_a", i32(t, m, 1))
	if err != nil {
		t.Fatalf("DefineGlobal: %v", err)
	}
	if g.Linkage != LinkageExternal || !g.DSOLocal || g.IsConstant {
		t.Fatalf("unexpected defaults %+v", g)
	}
	if _, err := m.DefineGlobal("global_a", i32(t, m, 2)); !errors.Is(err, diag.ErrDuplicateSymbol) {
		t.Fatalf("expected DuplicateSymbol, got %v", err)
	}
}

func TestRedefineGlobalIsGetOrInsert(t *testing.T) {
	m := NewModule("test", "")
	g1, err := m.RedefineGlobal("x", i32(t, m, 1))
	if err != nil {
		t.Fatal(err)
	}
	g2, err := m.RedefineGlobal("x", i32(t, m, 5))
	if err != nil {
		t.Fatal(err)
	}
	if g1 != g2 || len(m.Globals) != 1 {
		t.Fatalf("redefinition must reuse the global")
	}
	if g2.Init.Bits != 5 {
		t.Fatalf("initializer not replaced: %d", g2.Init.Bits)
	}
	i8, _ := consts.NewPool(m.Types).Int(m.Types.Builtins().I8, 1)
	if _, err := m.RedefineGlobal("x", i8); !errors.Is(err, diag.ErrTypeMismatch) {
		t.Fatalf("expected TypeMismatch on type change, got %v", err)
	}
}

func TestMarkConstant(t *testing.T) {
	m := NewModule("test", "")
	g, _ := m.DefineGlobal("c", i32(t, m, 1))
	m.MarkConstant(g)
	if !g.IsConstant || g.Linkage != LinkagePrivate {
		t.Fatalf("MarkConstant did not apply: %+v", g)
	}
}

func TestFunctionsAndGlobalsShareNamespace(t *testing.T) {
	m := NewModule("test", "")
	proto := &Prototype{Name: "main", Result: m.Types.Builtins().I32}
	if _, err := m.NewFunc(proto); err != nil {
		t.Fatal(err)
	}
	if _, err := m.DefineGlobal("main", i32(t, m, 1)); !errors.Is(err, diag.ErrDuplicateSymbol) {
		t.Fatalf("expected DuplicateSymbol, got %v", err)
	}
	if _, err := m.RedefineGlobal("main", i32(t, m, 1)); !errors.Is(err, diag.ErrDuplicateSymbol) {
		t.Fatalf("expected DuplicateSymbol, got %v", err)
	}
	if _, err := m.NewFunc(proto); !errors.Is(err, diag.ErrDuplicateSymbol) {
		t.Fatalf("expected DuplicateSymbol, got %v", err)
	}
}

func TestNamesAreNormalized(t *testing.T) {
	m := NewModule("test", "")
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if _, err := m.DefineGlobal(composed, i32(t, m, 1)); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Global(decomposed); !ok {
		t.Fatalf("NFC-equivalent names must resolve to the same global")
	}
}

func TestInsertUniqueGlobalNeverReusesAName(t *testing.T) {
	m := NewModule("test", "")
	if _, err := m.DefineGlobal("msg", i32(t, m, 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.NewFunc(&Prototype{Name: "msg.2", Result: m.Types.Void()}); err != nil {
		t.Fatal(err)
	}
	var names []string
	for v := int64(2); v <= 4; v++ {
		g, err := m.InsertUniqueGlobal("msg", i32(t, m, v))
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, g.Name)
	}
	want := []string{"msg.1", "msg.3", "msg.4"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
	if g, _ := m.Global("msg"); g.Init.Bits != 1 {
		t.Fatalf("existing global was re-initialized to %d", g.Init.Bits)
	}
}

func TestRollbackGlobalsDropsLaterGlobals(t *testing.T) {
	m := NewModule("test", "")
	if _, err := m.DefineGlobal("kept", i32(t, m, 1)); err != nil {
		t.Fatal(err)
	}
	mark := m.GlobalMark()
	if _, err := m.DefineGlobal("dropped", i32(t, m, 2)); err != nil {
		t.Fatal(err)
	}
	m.RollbackGlobals(mark)

	if len(m.Globals) != 1 {
		t.Fatalf("got %d globals after rollback, want 1", len(m.Globals))
	}
	if _, ok := m.Global("dropped"); ok {
		t.Fatal("rolled-back global still resolves")
	}
	g, err := m.DefineGlobal("dropped", i32(t, m, 3))
	if err != nil {
		t.Fatalf("name not released by rollback: %v", err)
	}
	if g.ID != GlobalID(mark) {
		t.Fatalf("new global got ID %d, want %d", g.ID, mark)
	}
}
