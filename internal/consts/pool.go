package consts

import (
	"math"

	"irforge/internal/diag"
	"irforge/internal/types"
)

// Pool constructs constants against one interner.
type Pool struct {
	types *types.Interner
}

// NewPool binds a pool to the interner owning the types it will reference.
func NewPool(in *types.Interner) *Pool {
	return &Pool{types: in}
}

// Types exposes the interner the pool checks against.
func (p *Pool) Types() *types.Interner {
	return p.types
}

// Scalar builds an integer or float constant from a raw bit pattern. Bits
// beyond the type's width are discarded.
func (p *Pool) Scalar(t types.TypeID, bits uint64) (Constant, error) {
	tt, ok := p.types.Lookup(t)
	if !ok {
		return Constant{}, diag.Errorf(diag.TypeMismatch, "", "scalar of unknown type %d", t)
	}
	switch tt.Kind {
	case types.KindInt:
		return Constant{Kind: KindInt, Type: t, Bits: truncate(bits, tt.Width)}, nil
	case types.KindFloat:
		return Constant{Kind: KindFloat, Type: t, Bits: truncate(bits, tt.Width)}, nil
	default:
		return Constant{}, diag.Errorf(diag.TypeMismatch, "", "scalar requires an integer or float type, got %s", p.types.String(t))
	}
}

// Int builds an integer constant from a signed value.
func (p *Pool) Int(t types.TypeID, v int64) (Constant, error) {
	if p.types.Kind(t) != types.KindInt {
		return Constant{}, diag.Errorf(diag.TypeMismatch, "", "integer literal of type %s", p.types.String(t))
	}
	return p.Scalar(t, uint64(v))
}

// Float builds a float constant, rounding to the type's precision.
func (p *Pool) Float(t types.TypeID, v float64) (Constant, error) {
	tt, ok := p.types.Lookup(t)
	if !ok || tt.Kind != types.KindFloat {
		return Constant{}, diag.Errorf(diag.TypeMismatch, "", "float literal of type %s", p.types.String(t))
	}
	if tt.Width == types.Width32 {
		return p.Scalar(t, uint64(math.Float32bits(float32(v))))
	}
	return p.Scalar(t, math.Float64bits(v))
}

// Array builds [length x elem]. A wrong element count or a wrong element
// type fails with ArityMismatch.
func (p *Pool) Array(elem types.TypeID, length uint64, elems []Constant) (Constant, error) {
	arrTy := p.types.Array(elem, length)
	if arrTy == types.NoTypeID {
		return Constant{}, diag.Errorf(diag.TypeMismatch, "", "invalid array element type %s", p.types.String(elem))
	}
	if uint64(len(elems)) != length {
		return Constant{}, diag.Errorf(diag.ArityMismatch, p.types.String(arrTy), "got %d elements, want %d", len(elems), length)
	}
	out := make([]Constant, len(elems))
	for i := range elems {
		if elems[i].Type != elem {
			return Constant{}, diag.Errorf(diag.ArityMismatch, p.types.String(arrTy),
				"element %d has type %s, want %s", i, p.types.String(elems[i].Type), p.types.String(elem))
		}
		out[i] = elems[i].clone()
	}
	return Constant{Kind: KindArray, Type: arrTy, Elems: out}, nil
}

// Struct builds a constant of a struct type whose body is set. A wrong
// field count fails with ArityMismatch, a wrong field type with TypeMismatch.
func (p *Pool) Struct(structType types.TypeID, fields []Constant) (Constant, error) {
	info, ok := p.types.StructInfo(structType)
	if !ok {
		return Constant{}, diag.Errorf(diag.TypeMismatch, p.types.String(structType), "not a struct type")
	}
	if !info.HasBody {
		return Constant{}, diag.Errorf(diag.TypeMismatch, p.types.String(structType), "struct has no body")
	}
	if len(fields) != len(info.Fields) {
		return Constant{}, diag.Errorf(diag.ArityMismatch, p.types.String(structType), "got %d fields, want %d", len(fields), len(info.Fields))
	}
	out := make([]Constant, len(fields))
	for i := range fields {
		if fields[i].Type != info.Fields[i] {
			return Constant{}, diag.Errorf(diag.TypeMismatch, p.types.String(structType),
				"field %d has type %s, want %s", i, p.types.String(fields[i].Type), p.types.String(info.Fields[i]))
		}
		out[i] = fields[i].clone()
	}
	return Constant{Kind: KindStruct, Type: structType, Elems: out}, nil
}

// StringBytes builds the [len+1 x i8] constant of a string literal,
// NUL terminator included.
func (p *Pool) StringBytes(content string) Constant {
	data := make([]byte, len(content)+1)
	copy(data, content)
	arrTy := p.types.Array(p.types.Builtins().I8, uint64(len(data)))
	return Constant{Kind: KindString, Type: arrTy, Bytes: data}
}

func truncate(bits uint64, width types.Width) uint64 {
	if width == 0 || width >= 64 {
		return bits
	}
	return bits & (uint64(1)<<width - 1)
}
