package ir

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"irforge/internal/consts"
	"irforge/internal/diag"
	"irforge/internal/types"
)

// Module is the top-level artifact of a build session. Functions and globals
// share one namespace, and both lists keep insertion order.
type Module struct {
	Name   string
	Target string
	Types  *types.Interner

	Globals []*Global
	Funcs   []*Func

	globalByName map[string]GlobalID
	funcByName   map[string]FuncID
}

// NewModule creates an empty module with a fresh type interner. target is
// stored verbatim.
func NewModule(name, target string) *Module {
	return &Module{
		Name:         name,
		Target:       target,
		Types:        types.NewInterner(),
		globalByName: make(map[string]GlobalID),
		funcByName:   make(map[string]FuncID),
	}
}

// Global looks up a global by name.
func (m *Module) Global(name string) (*Global, bool) {
	id, ok := m.globalByName[CanonicalName(name)]
	if !ok {
		return nil, false
	}
	return m.Globals[id], true
}

// Func looks up a function by name.
func (m *Module) Func(name string) (*Func, bool) {
	id, ok := m.funcByName[CanonicalName(name)]
	if !ok {
		return nil, false
	}
	return m.Funcs[id], true
}

// GlobalValue returns the address operand of g.
func (m *Module) GlobalValue(g *Global) Value {
	return Value{Kind: ValueGlobal, Type: m.Types.Pointer(g.Type), Pointee: g.Type, Global: g.ID}
}

// NewFunc creates a declaration-only function for proto with external
// linkage. The function keeps its own copy of proto. The name must not be
// taken.
func (m *Module) NewFunc(proto *Prototype) (*Func, error) {
	if proto == nil {
		return nil, diag.Errorf(diag.UnknownFunction, "", "missing prototype")
	}
	name := CanonicalName(proto.Name)
	if m.taken(name) {
		return nil, diag.Errorf(diag.DuplicateSymbol, name, "symbol already defined")
	}
	id, err := safecast.Conv[int32](len(m.Funcs))
	if err != nil {
		panic(fmt.Errorf("func count overflow: %w", err))
	}
	own := proto.Clone()
	own.Name = name
	f := &Func{
		ID:      FuncID(id),
		Name:    name,
		Proto:   &own,
		Sig:     m.Types.Fn(proto.Result, proto.Params, proto.Variadic),
		Result:  proto.Result,
		Linkage: LinkageExternal,
	}
	m.Funcs = append(m.Funcs, f)
	m.funcByName[name] = f.ID
	return f, nil
}

// DefineGlobal creates a new global initialized with init. It fails with
// DuplicateSymbol when the name is already in use.
func (m *Module) DefineGlobal(name string, init consts.Constant) (*Global, error) {
	name = CanonicalName(name)
	if m.taken(name) {
		return nil, diag.Errorf(diag.DuplicateSymbol, name, "symbol already defined")
	}
	return m.insertGlobal(name, init)
}

// RedefineGlobal is get-or-insert: it creates the global if missing, or
// replaces the initializer of the existing one. The type cannot change.
func (m *Module) RedefineGlobal(name string, init consts.Constant) (*Global, error) {
	name = CanonicalName(name)
	if g, ok := m.Global(name); ok {
		if init.Type != g.Type {
			return nil, diag.Errorf(diag.TypeMismatch, name, "initializer has type %s, global has type %s",
				m.Types.String(init.Type), m.Types.String(g.Type))
		}
		g.Init = init
		return g, nil
	}
	if _, ok := m.funcByName[name]; ok {
		return nil, diag.Errorf(diag.DuplicateSymbol, name, "symbol already defined as a function")
	}
	return m.insertGlobal(name, init)
}

// InsertUniqueGlobal always creates a new global. It uses name when that is
// free, otherwise the first of name.1, name.2, ... that no symbol holds.
func (m *Module) InsertUniqueGlobal(name string, init consts.Constant) (*Global, error) {
	base := CanonicalName(name)
	name = base
	for n := 1; m.taken(name); n++ {
		name = base + "." + strconv.Itoa(n)
	}
	return m.insertGlobal(name, init)
}

// GlobalMark records how many globals exist. Pass it to RollbackGlobals to
// drop every global created after the mark.
func (m *Module) GlobalMark() int { return len(m.Globals) }

// RollbackGlobals removes the globals created since mark. Nothing created
// before mark can refer to them, so IDs stay dense.
func (m *Module) RollbackGlobals(mark int) {
	if mark < 0 || mark >= len(m.Globals) {
		return
	}
	for _, g := range m.Globals[mark:] {
		delete(m.globalByName, g.Name)
	}
	clear(m.Globals[mark:])
	m.Globals = m.Globals[:mark]
}

// MarkConstant turns g into compiler-owned backing storage: immutable with
// private linkage.
func (m *Module) MarkConstant(g *Global) {
	g.IsConstant = true
	g.Linkage = LinkagePrivate
}

func (m *Module) insertGlobal(name string, init consts.Constant) (*Global, error) {
	if !init.Valid() {
		return nil, diag.Errorf(diag.TypeMismatch, name, "global needs a typed initializer")
	}
	id, err := safecast.Conv[int32](len(m.Globals))
	if err != nil {
		panic(fmt.Errorf("global count overflow: %w", err))
	}
	g := &Global{
		ID:       GlobalID(id),
		Name:     name,
		Type:     init.Type,
		Init:     init,
		Linkage:  LinkageExternal,
		DSOLocal: true,
	}
	m.Globals = append(m.Globals, g)
	m.globalByName[name] = g.ID
	return g, nil
}

func (m *Module) taken(name string) bool {
	if _, ok := m.globalByName[name]; ok {
		return true
	}
	_, ok := m.funcByName[name]
	return ok
}
