// Package mpack stores modules as versioned msgpack snapshots.
package mpack

import (
	"irforge/internal/consts"
	"irforge/internal/ir"
	"irforge/internal/types"
)

// SchemaVersion is bumped whenever the Snapshot layout changes.
const SchemaVersion uint16 = 1

// Snapshot is the serialized form of a module. It uses slices only, so the
// encoding of a module is deterministic.
type Snapshot struct {
	Schema uint16

	Name   string
	Target string

	// Types is indexed by TypeID; entry 0 is the invalid type.
	Types   []TypeRecord
	Globals []GlobalRecord
	Funcs   []FuncRecord
}

type TypeRecord struct {
	Kind  types.Kind
	Elem  types.TypeID
	Count uint64
	Width types.Width

	// structs
	Name    string
	Fields  []types.TypeID
	HasBody bool

	// function signatures
	Params   []types.TypeID
	Result   types.TypeID
	Variadic bool
}

type GlobalRecord struct {
	Name        string
	Type        types.TypeID
	Init        consts.Constant
	IsConstant  bool
	Linkage     ir.Linkage
	DSOLocal    bool
	UnnamedAddr bool
	Align       uint32
}

type FuncRecord struct {
	Name     string
	Result   types.TypeID
	Params   []types.TypeID
	Variadic bool
	Linkage  ir.Linkage
	DSOLocal bool

	Entry  ir.BlockID
	Blocks []BlockRecord
	Locals []ir.Local
}

type BlockRecord struct {
	Name   string
	Instrs []ir.Instr
}

// Capture copies m into a Snapshot.
func Capture(m *ir.Module) *Snapshot {
	s := &Snapshot{
		Schema: SchemaVersion,
		Name:   m.Name,
		Target: m.Target,
		Types:  captureTypes(m.Types),
	}
	for _, g := range m.Globals {
		s.Globals = append(s.Globals, GlobalRecord{
			Name:        g.Name,
			Type:        g.Type,
			Init:        g.Init,
			IsConstant:  g.IsConstant,
			Linkage:     g.Linkage,
			DSOLocal:    g.DSOLocal,
			UnnamedAddr: g.UnnamedAddr,
			Align:       g.Align,
		})
	}
	for _, f := range m.Funcs {
		rec := FuncRecord{
			Name:     f.Name,
			Result:   f.Result,
			Linkage:  f.Linkage,
			DSOLocal: f.DSOLocal,
			Entry:    f.Entry,
			Locals:   f.Locals,
		}
		if sig, ok := m.Types.FnInfo(f.Sig); ok {
			rec.Params = sig.Params
			rec.Variadic = sig.Variadic
		}
		for _, b := range f.Blocks {
			rec.Blocks = append(rec.Blocks, BlockRecord{Name: b.Name, Instrs: b.Instrs})
		}
		s.Funcs = append(s.Funcs, rec)
	}
	return s
}

func captureTypes(in *types.Interner) []TypeRecord {
	out := make([]TypeRecord, in.Len())
	for i := 1; i < len(out); i++ {
		id := types.TypeID(i)
		tt := in.MustLookup(id)
		rec := TypeRecord{Kind: tt.Kind, Elem: tt.Elem, Count: tt.Count, Width: tt.Width}
		switch tt.Kind {
		case types.KindStruct:
			if info, ok := in.StructInfo(id); ok {
				rec.Name = info.Name
				rec.Fields = in.StructFields(id)
				rec.HasBody = info.HasBody
			}
		case types.KindFn:
			if info, ok := in.FnInfo(id); ok {
				rec.Params = info.Params
				rec.Result = info.Result
				rec.Variadic = info.Variadic
			}
		}
		out[i] = rec
	}
	return out
}
