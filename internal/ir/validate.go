package ir

import (
	"fmt"

	"irforge/internal/diag"
	"irforge/internal/types"
)

// Validate checks module invariants and returns the first violation.
// Declaration-only functions are not verified; every function with a body is.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	if err := validateNames(m); err != nil {
		return err
	}
	for _, g := range m.Globals {
		if err := validateGlobal(m, g); err != nil {
			return err
		}
	}
	for _, f := range m.Funcs {
		if f == nil || f.IsDeclaration() {
			continue
		}
		if err := ValidateFunc(m, f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFunc checks one emitted function:
//
//  1. the body is the single entry block, which ends in exactly one
//     terminator with nothing after it
//  2. the ret operand matches the declared result type
//  3. every operand is a constant, a global of m, or a result produced
//     earlier in the block
//  4. every instruction is well typed
//
// Verification stops at the first violation.
func ValidateFunc(m *Module, f *Func) error {
	if f == nil {
		return violation("", "nil function")
	}
	if f.IsDeclaration() {
		return violation(f.Name, "function has no entry block")
	}
	entry := f.Block(f.Entry)
	if entry == nil {
		return violation(f.Name, fmt.Sprintf("entry block bb%d does not exist", f.Entry))
	}
	if len(f.Blocks) != 1 {
		return violation(f.Name, fmt.Sprintf("function has %d blocks, only the entry block is supported", len(f.Blocks)))
	}

	// 1. Check all blocks terminated exactly once
	if err := validateTerminators(f); err != nil {
		return err
	}

	// 2-4. Walk the entry block in program order
	v := funcValidator{m: m, f: f, defined: make(map[ValueID]types.TypeID)}
	for i := range entry.Instrs {
		if err := v.instr(entry, &entry.Instrs[i]); err != nil {
			return err
		}
	}
	return nil
}

func violation(subject, reason string) error {
	return diag.VerificationError(subject, reason)
}

func validateNames(m *Module) error {
	seen := make(map[string]struct{}, len(m.Globals)+len(m.Funcs))
	for _, g := range m.Globals {
		if _, dup := seen[g.Name]; dup {
			return violation(g.Name, "duplicate symbol name")
		}
		seen[g.Name] = struct{}{}
	}
	for _, f := range m.Funcs {
		if _, dup := seen[f.Name]; dup {
			return violation(f.Name, "duplicate symbol name")
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func validateGlobal(m *Module, g *Global) error {
	if g.Name == "" {
		return violation("", fmt.Sprintf("global G%d has no name", g.ID))
	}
	if !g.Init.Valid() {
		return violation(g.Name, "global has no initializer")
	}
	if g.Init.Type != g.Type {
		return violation(g.Name, fmt.Sprintf("initializer type %s differs from global type %s",
			m.Types.String(g.Init.Type), m.Types.String(g.Type)))
	}
	return nil
}

func validateTerminators(f *Func) error {
	for _, b := range f.Blocks {
		if len(b.Instrs) == 0 {
			return violation(f.Name, fmt.Sprintf("block %s has no terminator", blockName(b)))
		}
		last := len(b.Instrs) - 1
		for i := range b.Instrs {
			if b.Instrs[i].Op.IsTerminator() && i != last {
				return violation(f.Name, fmt.Sprintf("block %s has instructions after its terminator", blockName(b)))
			}
		}
		if !b.Instrs[last].Op.IsTerminator() {
			return violation(f.Name, fmt.Sprintf("block %s has no terminator", blockName(b)))
		}
	}
	return nil
}

func blockName(b *Block) string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("bb%d", b.ID)
}

type funcValidator struct {
	m       *Module
	f       *Func
	defined map[ValueID]types.TypeID
}

func (v *funcValidator) fail(b *Block, ins *Instr, format string, args ...any) error {
	return violation(v.f.Name, fmt.Sprintf("%s: %s: ", blockName(b), ins.Op)+fmt.Sprintf(format, args...))
}

func (v *funcValidator) typeStr(id types.TypeID) string {
	return v.m.Types.String(id)
}

func (v *funcValidator) instr(b *Block, ins *Instr) error {
	for i := range ins.Args {
		if err := v.operand(b, ins, ins.Args[i]); err != nil {
			return err
		}
	}
	in := v.m.Types
	switch ins.Op {
	case OpAlloca:
		if len(ins.Args) != 0 {
			return v.fail(b, ins, "takes no operands")
		}
		if _, ok := in.Lookup(ins.Elem); !ok || in.Kind(ins.Elem) == types.KindVoid {
			return v.fail(b, ins, "invalid cell type %s", v.typeStr(ins.Elem))
		}
		if ins.Type != in.Pointer(ins.Elem) {
			return v.fail(b, ins, "result type %s is not %s*", v.typeStr(ins.Type), v.typeStr(ins.Elem))
		}
	case OpLoad:
		if len(ins.Args) != 1 {
			return v.fail(b, ins, "want 1 operand, got %d", len(ins.Args))
		}
		addr := ins.Args[0]
		if !addr.IsAddress() {
			return v.fail(b, ins, "operand is not an address")
		}
		if addr.Pointee != ins.Type {
			return v.fail(b, ins, "loads %s from a %s cell", v.typeStr(ins.Type), v.typeStr(addr.Pointee))
		}
	case OpStore:
		if len(ins.Args) != 2 {
			return v.fail(b, ins, "want 2 operands, got %d", len(ins.Args))
		}
		addr, val := ins.Args[0], ins.Args[1]
		if !addr.IsAddress() {
			return v.fail(b, ins, "destination is not an address")
		}
		if addr.Pointee != val.Type {
			return v.fail(b, ins, "stores %s into a %s cell", v.typeStr(val.Type), v.typeStr(addr.Pointee))
		}
	case OpAdd, OpSub, OpMul:
		if len(ins.Args) != 2 {
			return v.fail(b, ins, "want 2 operands, got %d", len(ins.Args))
		}
		lhs, rhs := ins.Args[0], ins.Args[1]
		if lhs.Type != rhs.Type || lhs.Type != ins.Type {
			return v.fail(b, ins, "operand types %s and %s differ from %s",
				v.typeStr(lhs.Type), v.typeStr(rhs.Type), v.typeStr(ins.Type))
		}
		if tt, ok := in.Lookup(ins.Type); !ok || !tt.IsNumeric() {
			return v.fail(b, ins, "non-numeric type %s", v.typeStr(ins.Type))
		}
	case OpRet:
		if err := v.ret(b, ins); err != nil {
			return err
		}
	default:
		return v.fail(b, ins, "unknown opcode %d", ins.Op)
	}
	if ins.Result != NoValueID {
		if _, dup := v.defined[ins.Result]; dup {
			return v.fail(b, ins, "value %%%d defined twice", ins.Result)
		}
		v.defined[ins.Result] = ins.Type
	}
	return nil
}

func (v *funcValidator) ret(b *Block, ins *Instr) error {
	isVoid := v.m.Types.Kind(v.f.Result) == types.KindVoid
	switch {
	case isVoid && len(ins.Args) != 0:
		return v.fail(b, ins, "void function returns a value")
	case !isVoid && len(ins.Args) != 1:
		return v.fail(b, ins, "function returning %s has no return value", v.typeStr(v.f.Result))
	case !isVoid && ins.Args[0].Type != v.f.Result:
		return v.fail(b, ins, "returns %s, want %s", v.typeStr(ins.Args[0].Type), v.typeStr(v.f.Result))
	}
	return nil
}

func (v *funcValidator) operand(b *Block, ins *Instr, op Value) error {
	switch op.Kind {
	case ValueConst:
		if !op.Const.Valid() || op.Const.Type != op.Type {
			return v.fail(b, ins, "malformed constant operand")
		}
	case ValueGlobal:
		if op.Global < 0 || int(op.Global) >= len(v.m.Globals) {
			return v.fail(b, ins, "global G%d does not exist", op.Global)
		}
		g := v.m.Globals[op.Global]
		if op.Pointee != g.Type {
			return v.fail(b, ins, "operand @%s has stale type %s", g.Name, v.typeStr(op.Pointee))
		}
	case ValueInstr:
		if op.Func != v.f.ID {
			return v.fail(b, ins, "operand %%%d belongs to another function", op.ID)
		}
		ty, ok := v.defined[op.ID]
		if !ok {
			return v.fail(b, ins, "operand %%%d used before definition", op.ID)
		}
		if ty != op.Type {
			return v.fail(b, ins, "operand %%%d has type %s, defined as %s", op.ID, v.typeStr(op.Type), v.typeStr(ty))
		}
	default:
		return v.fail(b, ins, "missing operand")
	}
	return nil
}
