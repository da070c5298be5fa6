package llvm

import (
	"fmt"
	"strconv"

	lltypes "github.com/llir/llvm/ir/types"

	"irforge/internal/types"
)

// emitTypeDefs registers every struct as a named type definition, in
// declaration order. Colliding names get ".N" suffixes.
func (e *Emitter) emitTypeDefs() error {
	ids := e.types.Structs()
	used := make(map[string]int, len(ids))
	for _, id := range ids {
		info, ok := e.types.StructInfo(id)
		if !ok {
			return fmt.Errorf("llvm: struct type#%d has no info", id)
		}
		st := &lltypes.StructType{Opaque: !info.HasBody}
		st.SetName(uniqueStructName(used, info.Name))
		e.structs[id] = st
		e.typeCache[id] = st
		e.out.TypeDefs = append(e.out.TypeDefs, st)
	}
	// Bodies may refer to structs declared later.
	for _, id := range ids {
		info, _ := e.types.StructInfo(id)
		if !info.HasBody {
			continue
		}
		st := e.structs[id]
		st.Fields = make([]lltypes.Type, 0, len(info.Fields))
		for _, field := range info.Fields {
			ft, err := e.llvmType(field)
			if err != nil {
				return fmt.Errorf("llvm: struct %s: %w", info.Name, err)
			}
			st.Fields = append(st.Fields, ft)
		}
	}
	return nil
}

// uniqueStructName returns name, or name.N with N counting from 0 for
// later structs that share it.
func uniqueStructName(used map[string]int, name string) string {
	if name == "" {
		name = "anon"
	}
	n, seen := used[name]
	if !seen {
		used[name] = 0
		return name
	}
	for {
		candidate := name + "." + strconv.Itoa(n)
		n++
		if _, taken := used[candidate]; !taken {
			used[name] = n
			used[candidate] = 0
			return candidate
		}
	}
}

func (e *Emitter) llvmType(id types.TypeID) (lltypes.Type, error) {
	if t, ok := e.typeCache[id]; ok {
		return t, nil
	}
	tt, ok := e.types.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("unknown type#%d", id)
	}
	var out lltypes.Type
	switch tt.Kind {
	case types.KindVoid:
		out = lltypes.Void
	case types.KindInt:
		out = lltypes.NewInt(uint64(tt.Width))
	case types.KindFloat:
		if tt.Width == types.Width32 {
			out = lltypes.Float
		} else {
			out = lltypes.Double
		}
	case types.KindArray:
		elem, err := e.llvmType(tt.Elem)
		if err != nil {
			return nil, err
		}
		out = lltypes.NewArray(tt.Count, elem)
	case types.KindPointer:
		elem, err := e.llvmType(tt.Elem)
		if err != nil {
			return nil, err
		}
		out = lltypes.NewPointer(elem)
	case types.KindFn:
		info, ok := e.types.FnInfo(id)
		if !ok {
			return nil, fmt.Errorf("function type#%d has no info", id)
		}
		ret, err := e.llvmType(info.Result)
		if err != nil {
			return nil, err
		}
		params := make([]lltypes.Type, 0, len(info.Params))
		for _, p := range info.Params {
			pt, err := e.llvmType(p)
			if err != nil {
				return nil, err
			}
			params = append(params, pt)
		}
		ft := lltypes.NewFunc(ret, params...)
		ft.Variadic = info.Variadic
		out = ft
	case types.KindStruct:
		return nil, fmt.Errorf("struct type#%d was not declared", id)
	default:
		return nil, fmt.Errorf("unsupported type kind %s", tt.Kind)
	}
	e.typeCache[id] = out
	return out, nil
}

func (e *Emitter) intType(id types.TypeID) (*lltypes.IntType, error) {
	t, err := e.llvmType(id)
	if err != nil {
		return nil, err
	}
	it, ok := t.(*lltypes.IntType)
	if !ok {
		return nil, fmt.Errorf("%s is not an integer type", e.types.String(id))
	}
	return it, nil
}
