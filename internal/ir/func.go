package ir

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"irforge/internal/types"
)

type FuncID int32

// Prototype is a function signature without a body. The symbol table and
// every declared function hold separate copies.
type Prototype struct {
	Name     string
	Result   types.TypeID
	Params   []types.TypeID
	Variadic bool
}

// Clone returns a deep copy.
func (p Prototype) Clone() Prototype {
	out := p
	out.Params = slices.Clone(p.Params)
	return out
}

// Local is a named stack cell allocated in the entry block.
type Local struct {
	Name string
	Type types.TypeID
	Addr ValueID
}

type Func struct {
	ID     FuncID
	Name   string
	Proto  *Prototype
	Sig    types.TypeID
	Result types.TypeID

	Linkage  Linkage
	DSOLocal bool

	Blocks []*Block
	Locals []Local
	Entry  BlockID

	nextValue ValueID
}

// IsDeclaration reports whether the function has no body.
func (f *Func) IsDeclaration() bool {
	return len(f.Blocks) == 0
}

// NewBlock appends an empty block.
func (f *Func) NewBlock(name string) *Block {
	id, err := safecast.Conv[int32](len(f.Blocks))
	if err != nil {
		panic(fmt.Errorf("block count overflow: %w", err))
	}
	b := &Block{ID: BlockID(id), Name: name}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Block returns the block with the given id, or nil.
func (f *Func) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return f.Blocks[id]
}

// Append adds ins to block b. When withResult is set, a fresh ValueID is
// assigned and the corresponding operand is returned.
func (f *Func) Append(b *Block, ins Instr, withResult bool) Value {
	if withResult {
		f.nextValue++
		ins.Result = f.nextValue
	}
	b.Instrs = append(b.Instrs, ins)
	if !withResult {
		return NoValue
	}
	v := Value{Kind: ValueInstr, Type: ins.Type, Func: f.ID, ID: ins.Result}
	if ins.Op == OpAlloca {
		v.Pointee = ins.Elem
	}
	return v
}

// Reset discards the body, returning the function to a declaration.
func (f *Func) Reset() {
	f.Blocks = nil
	f.Locals = nil
	f.Entry = 0
	f.nextValue = NoValueID
}
