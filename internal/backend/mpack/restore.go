package mpack

import (
	"fmt"

	"irforge/internal/ir"
	"irforge/internal/types"
)

// Restore rebuilds a module from s. Type and value numbering is replayed
// in the original order, so the result renders exactly like the module the
// snapshot was taken from.
func (s *Snapshot) Restore() (*ir.Module, error) {
	m := ir.NewModule(s.Name, s.Target)
	if err := restoreTypes(m.Types, s.Types); err != nil {
		return nil, err
	}
	for _, rec := range s.Globals {
		if k := m.Types.Kind(rec.Type); k == types.KindInvalid || k == types.KindVoid || k == types.KindFn {
			return nil, fmt.Errorf("mpack: global %s: invalid type #%d", rec.Name, rec.Type)
		}
		g, err := m.DefineGlobal(rec.Name, rec.Init)
		if err != nil {
			return nil, fmt.Errorf("mpack: global %s: %w", rec.Name, err)
		}
		if g.Type != rec.Type {
			return nil, fmt.Errorf("mpack: global %s: initializer type differs from recorded type", rec.Name)
		}
		g.IsConstant = rec.IsConstant
		g.Linkage = rec.Linkage
		g.DSOLocal = rec.DSOLocal
		g.UnnamedAddr = rec.UnnamedAddr
		g.Align = rec.Align
	}
	for _, rec := range s.Funcs {
		if err := restoreFunc(m, rec); err != nil {
			return nil, fmt.Errorf("mpack: function %s: %w", rec.Name, err)
		}
	}
	if err := ir.Validate(m); err != nil {
		return nil, fmt.Errorf("mpack: restored module: %w", err)
	}
	return m, nil
}

// restoreTypes replays the type table. Every record may refer only to
// types with a smaller ID, except struct fields, which are set once all
// types exist. This keeps crafted snapshots from building cyclic types.
func restoreTypes(in *types.Interner, recs []TypeRecord) error {
	if len(recs) < in.Len() {
		return fmt.Errorf("mpack: type table has %d entries, want at least %d", len(recs), in.Len())
	}
	for i := 1; i < len(recs); i++ {
		rec := recs[i]
		earlier := func(id types.TypeID) bool { return id != types.NoTypeID && int(id) < i }
		var got types.TypeID
		switch rec.Kind {
		case types.KindVoid:
			got = in.Void()
		case types.KindInt:
			got = in.Int(uint(rec.Width))
		case types.KindFloat:
			got = in.Float(uint(rec.Width))
		case types.KindArray:
			if !earlier(rec.Elem) {
				return fmt.Errorf("mpack: type #%d: element type #%d is not defined before it", i, rec.Elem)
			}
			got = in.Array(rec.Elem, rec.Count)
		case types.KindPointer:
			if !earlier(rec.Elem) {
				return fmt.Errorf("mpack: type #%d: pointee type #%d is not defined before it", i, rec.Elem)
			}
			got = in.Pointer(rec.Elem)
		case types.KindStruct:
			got = in.DeclareStruct(rec.Name)
		case types.KindFn:
			if !earlier(rec.Result) {
				return fmt.Errorf("mpack: type #%d: result type #%d is not defined before it", i, rec.Result)
			}
			for _, p := range rec.Params {
				if !earlier(p) {
					return fmt.Errorf("mpack: type #%d: parameter type #%d is not defined before it", i, p)
				}
			}
			got = in.Fn(rec.Result, rec.Params, rec.Variadic)
		default:
			return fmt.Errorf("mpack: type #%d has unknown kind %d", i, rec.Kind)
		}
		if int(got) != i {
			return fmt.Errorf("mpack: type #%d (%s) replayed as #%d", i, rec.Kind, got)
		}
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Kind != types.KindStruct || !recs[i].HasBody {
			continue
		}
		if err := in.SetStructBody(types.TypeID(i), recs[i].Fields); err != nil {
			return fmt.Errorf("mpack: %w", err)
		}
	}
	return nil
}

func restoreFunc(m *ir.Module, rec FuncRecord) error {
	if k := m.Types.Kind(rec.Result); k == types.KindInvalid || k == types.KindFn {
		return fmt.Errorf("invalid result type #%d", rec.Result)
	}
	for _, p := range rec.Params {
		if k := m.Types.Kind(p); k == types.KindInvalid || k == types.KindVoid || k == types.KindFn {
			return fmt.Errorf("invalid parameter type #%d", p)
		}
	}
	f, err := m.NewFunc(&ir.Prototype{
		Name:     rec.Name,
		Result:   rec.Result,
		Params:   rec.Params,
		Variadic: rec.Variadic,
	})
	if err != nil {
		return err
	}
	f.Linkage = rec.Linkage
	f.DSOLocal = rec.DSOLocal
	for _, br := range rec.Blocks {
		b := f.NewBlock(br.Name)
		for _, ins := range br.Instrs {
			want := ins.Result
			v := f.Append(b, ins, want != ir.NoValueID)
			if v.ID != want {
				return fmt.Errorf("value %%%d replayed as %%%d", want, v.ID)
			}
		}
	}
	f.Entry = rec.Entry
	f.Locals = rec.Locals
	return nil
}
