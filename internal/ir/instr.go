package ir

import "irforge/internal/types"

type Op uint8

const (
	OpInvalid Op = iota
	OpAlloca
	OpLoad
	OpStore
	OpAdd
	OpSub
	OpMul
	OpRet
)

func (op Op) String() string {
	switch op {
	case OpAlloca:
		return "alloca"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpRet:
		return "ret"
	default:
		return "invalid"
	}
}

// IsTerminator reports whether op ends a basic block.
func (op Op) IsTerminator() bool {
	return op == OpRet
}

// IsBinary reports whether op is a two-operand arithmetic instruction.
func (op Op) IsBinary() bool {
	return op == OpAdd || op == OpSub || op == OpMul
}

// Instr is one instruction.
//
//	alloca: Elem = cell type, Type = Elem*, Result set
//	load:   Args = [addr], Type = Elem = loaded type, Result set
//	store:  Args = [addr, value]
//	add/sub/mul: Args = [lhs, rhs], Type = operand type, Result set
//	ret:    Args = [] or [value]
type Instr struct {
	Op     Op
	Result ValueID
	Type   types.TypeID
	Elem   types.TypeID
	Name   string
	Args   []Value
}
