package emit

import (
	"strconv"

	"irforge/internal/consts"
	"irforge/internal/diag"
	"irforge/internal/ir"
	"irforge/internal/trace"
	"irforge/internal/types"
)

// Builder appends instructions to the entry block of one function.
type Builder struct {
	s     *Session
	fn    *ir.Func
	block *ir.Block
	span  *trace.Span

	// globals at or above mark were created by this body
	mark int

	terminated bool
	closed     bool
}

func (b *Builder) Func() *ir.Func { return b.fn }

func (b *Builder) Types() *types.Interner { return b.s.mod.Types }

func (b *Builder) Pool() *consts.Pool { return b.s.pool }

func (b *Builder) writable() error {
	if b.closed {
		return diag.Errorf(diag.SessionBusy, b.fn.Name, "construction window is closed")
	}
	if b.terminated {
		return diag.VerificationError(b.fn.Name, "instruction after terminator")
	}
	return nil
}

func (b *Builder) append(ins ir.Instr, withResult bool) ir.Value {
	v := b.fn.Append(b.block, ins, withResult)
	trace.Instr(b.s.tracer, trace.Site{Func: b.fn.Name, Value: uint32(v.ID)}, ins.Op.String(), ins.Name, b.span.ID())
	return v
}

// Const wraps c as an operand.
func (b *Builder) Const(c consts.Constant) ir.Value {
	return ir.ConstValue(c)
}

// AllocateLocal reserves a fresh stack cell of type t. The returned address
// never aliases another cell.
func (b *Builder) AllocateLocal(t types.TypeID, name string) (ir.Value, error) {
	if err := b.writable(); err != nil {
		return ir.NoValue, err
	}
	in := b.Types()
	tt, ok := in.Lookup(t)
	switch {
	case !ok || tt.Kind == types.KindVoid || tt.Kind == types.KindFn:
		return ir.NoValue, diag.Errorf(diag.TypeMismatch, name, "cannot allocate a cell of type %s", in.String(t))
	case tt.Kind == types.KindStruct:
		if info, ok := in.StructInfo(t); !ok || !info.HasBody {
			return ir.NoValue, diag.Errorf(diag.TypeMismatch, name, "struct %s has no body", in.String(t))
		}
	}
	v := b.append(ir.Instr{Op: ir.OpAlloca, Type: in.Pointer(t), Elem: t, Name: name}, true)
	b.fn.Locals = append(b.fn.Locals, ir.Local{Name: name, Type: t, Addr: v.ID})
	return v, nil
}

// Load reads the cell at addr, which must hold a value of type expected.
func (b *Builder) Load(addr ir.Value, expected types.TypeID) (ir.Value, error) {
	if err := b.writable(); err != nil {
		return ir.NoValue, err
	}
	in := b.Types()
	if !addr.IsAddress() {
		return ir.NoValue, diag.Errorf(diag.TypeMismatch, b.fn.Name, "load from %s, which is not an address", in.String(addr.Type))
	}
	if addr.Pointee != expected {
		return ir.NoValue, diag.Errorf(diag.TypeMismatch, b.fn.Name, "load %s from a %s cell", in.String(expected), in.String(addr.Pointee))
	}
	return b.append(ir.Instr{Op: ir.OpLoad, Type: expected, Elem: expected, Args: []ir.Value{addr}}, true), nil
}

// Global returns the address of the global called name.
func (b *Builder) Global(name string) (ir.Value, error) {
	g, ok := b.s.mod.Global(name)
	if !ok {
		return ir.NoValue, diag.Errorf(diag.UnknownGlobal, name, "no global named %s", name)
	}
	return b.s.mod.GlobalValue(g), nil
}

// LoadGlobal loads the global called name at its declared type.
func (b *Builder) LoadGlobal(name string) (ir.Value, error) {
	addr, err := b.Global(name)
	if err != nil {
		return ir.NoValue, err
	}
	return b.Load(addr, addr.Pointee)
}

// Store writes v into the cell at addr.
func (b *Builder) Store(addr, v ir.Value) error {
	if err := b.writable(); err != nil {
		return err
	}
	in := b.Types()
	if !addr.IsAddress() {
		return diag.Errorf(diag.TypeMismatch, b.fn.Name, "store to %s, which is not an address", in.String(addr.Type))
	}
	if !v.Valid() || v.Type != addr.Pointee {
		return diag.Errorf(diag.TypeMismatch, b.fn.Name, "store %s into a %s cell", in.String(v.Type), in.String(addr.Pointee))
	}
	b.append(ir.Instr{Op: ir.OpStore, Args: []ir.Value{addr, v}}, false)
	return nil
}

func (b *Builder) Add(lhs, rhs ir.Value) (ir.Value, error) { return b.binary(ir.OpAdd, lhs, rhs) }

func (b *Builder) Sub(lhs, rhs ir.Value) (ir.Value, error) { return b.binary(ir.OpSub, lhs, rhs) }

func (b *Builder) Mul(lhs, rhs ir.Value) (ir.Value, error) { return b.binary(ir.OpMul, lhs, rhs) }

func (b *Builder) binary(op ir.Op, lhs, rhs ir.Value) (ir.Value, error) {
	if err := b.writable(); err != nil {
		return ir.NoValue, err
	}
	in := b.Types()
	if !lhs.Valid() || !rhs.Valid() || lhs.Type != rhs.Type {
		return ir.NoValue, diag.Errorf(diag.TypeMismatch, b.fn.Name, "%s of %s and %s", op, in.String(lhs.Type), in.String(rhs.Type))
	}
	if tt, ok := in.Lookup(lhs.Type); !ok || !tt.IsNumeric() {
		return ir.NoValue, diag.Errorf(diag.TypeMismatch, b.fn.Name, "%s of non-numeric %s", op, in.String(lhs.Type))
	}
	return b.append(ir.Instr{Op: op, Type: lhs.Type, Args: []ir.Value{lhs, rhs}}, true), nil
}

// EmitConstantBacking stores init in a new private constant global owned by
// the current function and returns its address. When the name is already
// taken the global gets a ".N" suffix; existing globals are never touched.
func (b *Builder) EmitConstantBacking(t types.TypeID, name string, init consts.Constant) (ir.Value, error) {
	if err := b.writable(); err != nil {
		return ir.NoValue, err
	}
	if !init.Valid() || init.Type != t {
		in := b.Types()
		return ir.NoValue, diag.Errorf(diag.TypeMismatch, name, "initializer has type %s, want %s", in.String(init.Type), in.String(t))
	}
	g, err := b.s.mod.InsertUniqueGlobal(b.s.naming.ConstantName(b.fn.Name, name), init)
	if err != nil {
		return ir.NoValue, err
	}
	b.s.mod.MarkConstant(g)
	trace.Instr(b.s.tracer, trace.Site{Func: b.fn.Name, Global: g.Name}, "constant", name, b.span.ID())
	return b.s.mod.GlobalValue(g), nil
}

// EmitString stores content in a new NUL-terminated private byte array and
// returns its address. Names are uniquified like constant backings.
func (b *Builder) EmitString(content, name string) (ir.Value, error) {
	if err := b.writable(); err != nil {
		return ir.NoValue, err
	}
	g, err := b.s.mod.InsertUniqueGlobal(b.s.naming.StringName(b.fn.Name, name), b.s.pool.StringBytes(content))
	if err != nil {
		return ir.NoValue, err
	}
	b.s.mod.MarkConstant(g)
	g.UnnamedAddr = true
	g.Align = 1
	trace.Instr(b.s.tracer, trace.Site{Func: b.fn.Name, Global: g.Name}, "string", name, b.span.ID())
	return b.s.mod.GlobalValue(g), nil
}

// TerminateWithReturn ends the block with ret. v must be absent for void
// functions and match the result type otherwise.
func (b *Builder) TerminateWithReturn(v ir.Value) error {
	if err := b.writable(); err != nil {
		return err
	}
	in := b.Types()
	result := b.fn.Result
	ins := ir.Instr{Op: ir.OpRet}
	switch {
	case in.Kind(result) == types.KindVoid:
		if v.Valid() {
			return diag.Errorf(diag.ReturnTypeMismatch, b.fn.Name, "void function returns %s", in.String(v.Type))
		}
	case !v.Valid():
		return diag.Errorf(diag.ReturnTypeMismatch, b.fn.Name, "function returning %s has no return value", in.String(result))
	case v.Type != result:
		return diag.Errorf(diag.ReturnTypeMismatch, b.fn.Name, "returns %s, want %s", in.String(v.Type), in.String(result))
	default:
		ins.Args = []ir.Value{v}
	}
	b.append(ins, false)
	b.terminated = true
	return nil
}

// Finish verifies the function and closes the window. A function that fails
// verification is reset to a declaration.
func (b *Builder) Finish() error {
	if b.closed {
		return diag.Errorf(diag.SessionBusy, b.fn.Name, "construction window is closed")
	}
	if err := ir.ValidateFunc(b.s.mod, b.fn); err != nil {
		b.abort(err.Error())
		return err
	}
	b.closed = true
	b.s.close(b)
	b.span.WithExtra("instrs", strconv.Itoa(len(b.block.Instrs))).End("ok")
	return nil
}

// Abort discards the body and every global created while the window was
// open, then closes the window.
func (b *Builder) Abort() { b.abort("aborted") }

func (b *Builder) abort(reason string) {
	if b.closed {
		return
	}
	b.fn.Reset()
	b.s.mod.RollbackGlobals(b.mark)
	b.closed = true
	b.s.close(b)
	b.span.Fail(reason)
}
