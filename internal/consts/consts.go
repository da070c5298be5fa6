// Package consts builds typed constant values on top of a type interner.
//
// Constants are plain values: building one never mutates the interner's
// declarations or any module. Aggregates are checked eagerly against their
// declared type so an ill-typed constant can never reach a global initializer.
package consts

import (
	"math"
	"slices"

	"irforge/internal/types"
)

// Kind discriminates constant shapes.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindArray
	KindStruct
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Constant is a typed immutable value. Bits holds the scalar bit pattern
// (integers truncated to their width, floats as IEEE-754 of their precision).
// Elems holds array elements or struct fields. Bytes holds string content
// including the trailing NUL.
type Constant struct {
	Kind  Kind
	Type  types.TypeID
	Bits  uint64
	Elems []Constant
	Bytes []byte
}

// Valid reports whether c was produced by the pool.
func (c Constant) Valid() bool {
	return c.Kind != KindInvalid && c.Type != types.NoTypeID
}

// Int returns the sign-extended integer value of an integer constant.
func (c Constant) Int(width types.Width) int64 {
	if width == 0 || width >= 64 {
		return int64(c.Bits)
	}
	shift := 64 - uint(width)
	return int64(c.Bits<<shift) >> shift
}

// Float returns the value of a float constant of the given precision.
func (c Constant) Float(width types.Width) float64 {
	if width == types.Width32 {
		return float64(math.Float32frombits(uint32(c.Bits)))
	}
	return math.Float64frombits(c.Bits)
}

// Equal compares two constants structurally.
func (c Constant) Equal(o Constant) bool {
	if c.Kind != o.Kind || c.Type != o.Type || c.Bits != o.Bits {
		return false
	}
	if !slices.Equal(c.Bytes, o.Bytes) || len(c.Elems) != len(o.Elems) {
		return false
	}
	for i := range c.Elems {
		if !c.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

func (c Constant) clone() Constant {
	out := c
	if c.Bytes != nil {
		out.Bytes = slices.Clone(c.Bytes)
	}
	if c.Elems != nil {
		out.Elems = make([]Constant, len(c.Elems))
		for i := range c.Elems {
			out.Elems[i] = c.Elems[i].clone()
		}
	}
	return out
}
