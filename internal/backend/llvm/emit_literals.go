package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"

	"irforge/internal/consts"
	"irforge/internal/types"
)

func (e *Emitter) constant(c consts.Constant) (constant.Constant, error) {
	tt, ok := e.types.Lookup(c.Type)
	if !ok {
		return nil, fmt.Errorf("constant of unknown type#%d", c.Type)
	}
	switch c.Kind {
	case consts.KindInt:
		it, err := e.intType(c.Type)
		if err != nil {
			return nil, err
		}
		if tt.Width == types.Width1 {
			return constant.NewInt(it, int64(c.Bits&1)), nil
		}
		return constant.NewInt(it, c.Int(tt.Width)), nil
	case consts.KindFloat:
		t, err := e.llvmType(c.Type)
		if err != nil {
			return nil, err
		}
		ft, ok := t.(*lltypes.FloatType)
		if !ok {
			return nil, fmt.Errorf("%s is not a float type", e.types.String(c.Type))
		}
		return constant.NewFloat(ft, c.Float(tt.Width)), nil
	case consts.KindArray:
		t, err := e.llvmType(c.Type)
		if err != nil {
			return nil, err
		}
		at, ok := t.(*lltypes.ArrayType)
		if !ok {
			return nil, fmt.Errorf("%s is not an array type", e.types.String(c.Type))
		}
		elems, err := e.constants(c.Elems)
		if err != nil {
			return nil, err
		}
		return constant.NewArray(at, elems...), nil
	case consts.KindStruct:
		st, ok := e.structs[c.Type]
		if !ok {
			return nil, fmt.Errorf("%s is not a declared struct", e.types.String(c.Type))
		}
		fields, err := e.constants(c.Elems)
		if err != nil {
			return nil, err
		}
		return constant.NewStruct(st, fields...), nil
	case consts.KindString:
		return constant.NewCharArray(c.Bytes), nil
	default:
		return nil, fmt.Errorf("invalid constant of type %s", e.types.String(c.Type))
	}
}

func (e *Emitter) constants(cs []consts.Constant) ([]constant.Constant, error) {
	out := make([]constant.Constant, 0, len(cs))
	for _, c := range cs {
		lc, err := e.constant(c)
		if err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, nil
}
