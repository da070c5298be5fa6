package ir

import (
	"fmt"

	"irforge/internal/consts"
	"irforge/internal/types"
)

// ValueID numbers instruction results inside one function. Zero means none.
type ValueID uint32

const NoValueID ValueID = 0

type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueConst
	ValueGlobal
	ValueInstr
)

// Value is an instruction operand. Addresses (allocas and globals) carry the
// logical type of the cell they point to in Pointee, so loads and stores can
// be checked without recovering it from the pointer type.
type Value struct {
	Kind    ValueKind
	Type    types.TypeID
	Pointee types.TypeID

	Const  consts.Constant // ValueConst
	Global GlobalID        // ValueGlobal
	Func   FuncID          // ValueInstr: owning function
	ID     ValueID         // ValueInstr
}

// NoValue is the absent value, e.g. the operand of a void return.
var NoValue = Value{}

// ConstValue wraps a constant as an operand.
func ConstValue(c consts.Constant) Value {
	return Value{Kind: ValueConst, Type: c.Type, Const: c}
}

// Valid reports whether v refers to anything.
func (v Value) Valid() bool {
	return v.Kind != ValueNone
}

// IsAddress reports whether v points to a typed storage cell.
func (v Value) IsAddress() bool {
	return v.Pointee != types.NoTypeID
}

func (v Value) String() string {
	switch v.Kind {
	case ValueConst:
		return fmt.Sprintf("const(%s)", v.Const.Kind)
	case ValueGlobal:
		return fmt.Sprintf("@G%d", v.Global)
	case ValueInstr:
		return fmt.Sprintf("%%%d", v.ID)
	default:
		return "<none>"
	}
}
