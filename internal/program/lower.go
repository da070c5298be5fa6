package program

import (
	"fmt"
	"strings"

	"irforge/internal/consts"
	"irforge/internal/diag"
	"irforge/internal/emit"
	"irforge/internal/ir"
	"irforge/internal/symbols"
	"irforge/internal/types"
)

// Lowering applies a Program to one module. Methods are meant to be called
// in the order declared: structs, prototypes, globals, then bodies.
type Lowering struct {
	prog    *Program
	mod     *ir.Module
	pool    *consts.Pool
	structs map[string]types.TypeID
}

func NewLowering(p *Program, m *ir.Module) *Lowering {
	return &Lowering{
		prog:    p,
		mod:     m,
		pool:    consts.NewPool(m.Types),
		structs: make(map[string]types.TypeID, len(p.Structs)),
	}
}

// Type resolves a type descriptor against the module's struct declarations.
func (l *Lowering) Type(src string) (types.TypeID, error) {
	return ParseType(l.mod.Types, l.structs, src)
}

// DeclareStructs declares every struct first and sets bodies afterwards, so
// fields may refer to structs declared later in the file.
func (l *Lowering) DeclareStructs() error {
	for _, s := range l.prog.Structs {
		l.structs[strings.TrimPrefix(s.Name, "%")] = l.mod.Types.DeclareStruct(strings.TrimPrefix(s.Name, "%"))
	}
	for _, s := range l.prog.Structs {
		fields := make([]types.TypeID, 0, len(s.Fields))
		for _, f := range s.Fields {
			id, err := l.Type(f)
			if err != nil {
				return fmt.Errorf("struct %s: %w", s.Name, err)
			}
			fields = append(fields, id)
		}
		if err := l.mod.Types.SetStructBody(l.structs[strings.TrimPrefix(s.Name, "%")], fields); err != nil {
			return fmt.Errorf("struct %s: %w", s.Name, err)
		}
	}
	return nil
}

// RegisterPrototypes registers every prototype once. A repeated name fails
// with DuplicatePrototype.
func (l *Lowering) RegisterPrototypes(syms *symbols.Table) error {
	for _, pr := range l.prog.Prototypes {
		result, err := l.Type(pr.Result)
		if err != nil {
			return fmt.Errorf("prototype %s: %w", pr.Name, err)
		}
		params := make([]types.TypeID, 0, len(pr.Params))
		for _, src := range pr.Params {
			id, err := l.Type(src)
			if err != nil {
				return fmt.Errorf("prototype %s: %w", pr.Name, err)
			}
			if l.mod.Types.Kind(id) == types.KindVoid {
				return diag.Errorf(diag.TypeMismatch, pr.Name, "parameter of type void")
			}
			params = append(params, id)
		}
		proto := ir.Prototype{Result: result, Params: params, Variadic: pr.Variadic}
		if _, err := syms.Register(pr.Name, proto); err != nil {
			return err
		}
	}
	return nil
}

// DefineGlobals defines each global once, in file order.
func (l *Lowering) DefineGlobals() error {
	for _, g := range l.prog.Globals {
		t, err := l.Type(g.Type)
		if err != nil {
			return fmt.Errorf("global %s: %w", g.Name, err)
		}
		init, err := Constant(l.pool, t, g.Value)
		if err != nil {
			return fmt.Errorf("global %s: %w", g.Name, err)
		}
		if _, err := l.mod.DefineGlobal(g.Name, init); err != nil {
			return err
		}
	}
	return nil
}

// Body turns a function's statements into builder steps. Statement results
// are bound by name for later statements; "@name" refers to a global.
func (l *Lowering) Body(fn FunctionDecl) ([]emit.Statement, error) {
	env := make(map[string]ir.Value)
	out := make([]emit.Statement, 0, len(fn.Stmts))
	for i, st := range fn.Stmts {
		step, err := l.statement(env, st)
		if err != nil {
			return nil, fmt.Errorf("%s: statement %d (%s): %w", fn.Name, i+1, st.Op, err)
		}
		out = append(out, step)
	}
	return out, nil
}

func (l *Lowering) statement(env map[string]ir.Value, st Stmt) (emit.Statement, error) {
	var t types.TypeID
	if st.Type != "" {
		var err error
		if t, err = l.Type(st.Type); err != nil {
			return nil, err
		}
	}

	var run emit.Statement
	switch st.Op {
	case "const":
		init, err := Constant(l.pool, t, st.Value)
		if err != nil {
			return nil, err
		}
		run = func(b *emit.Builder) (ir.Value, error) {
			return b.EmitConstantBacking(t, st.Name, init)
		}
	case "string":
		content, _ := st.Value.(string)
		run = func(b *emit.Builder) (ir.Value, error) {
			return b.EmitString(content, st.Name)
		}
	case "alloca":
		run = func(b *emit.Builder) (ir.Value, error) {
			return b.AllocateLocal(t, st.Name)
		}
	case "load":
		run = func(b *emit.Builder) (ir.Value, error) {
			addr, err := resolve(b, env, st.Src)
			if err != nil {
				return ir.NoValue, err
			}
			expected := t
			if expected == types.NoTypeID {
				expected = addr.Pointee
			}
			return b.Load(addr, expected)
		}
	case "store":
		run = func(b *emit.Builder) (ir.Value, error) {
			dst, err := resolve(b, env, st.Dst)
			if err != nil {
				return ir.NoValue, err
			}
			src, err := l.source(b, env, st, dst.Pointee)
			if err != nil {
				return ir.NoValue, err
			}
			return ir.NoValue, b.Store(dst, src)
		}
	case "literal":
		c, err := Constant(l.pool, t, st.Value)
		if err != nil {
			return nil, err
		}
		run = func(b *emit.Builder) (ir.Value, error) {
			return b.Const(c), nil
		}
	case "add", "sub", "mul":
		op := st.Op
		run = func(b *emit.Builder) (ir.Value, error) {
			lhs, err := resolve(b, env, st.Lhs)
			if err != nil {
				return ir.NoValue, err
			}
			rhs, err := resolve(b, env, st.Rhs)
			if err != nil {
				return ir.NoValue, err
			}
			switch op {
			case "add":
				return b.Add(lhs, rhs)
			case "sub":
				return b.Sub(lhs, rhs)
			default:
				return b.Mul(lhs, rhs)
			}
		}
	case "return":
		run = func(b *emit.Builder) (ir.Value, error) {
			if st.Src == "" && st.Value == nil {
				return ir.NoValue, nil
			}
			return l.source(b, env, st, b.Func().Result)
		}
	default:
		return nil, diag.Errorf(diag.InvalidProgram, st.Op, "unknown op")
	}

	name := st.Binding()
	if name == "" || st.Op == "store" || st.Op == "return" {
		return run, nil
	}
	return func(b *emit.Builder) (ir.Value, error) {
		v, err := run(b)
		if err != nil {
			return ir.NoValue, err
		}
		if _, dup := env[name]; dup {
			return ir.NoValue, diag.Errorf(diag.InvalidProgram, name, "name is already bound")
		}
		env[name] = v
		return v, nil
	}, nil
}

// source yields the value operand of a store or return: a reference in Src,
// or an inline Value of the given type.
func (l *Lowering) source(b *emit.Builder, env map[string]ir.Value, st Stmt, fallback types.TypeID) (ir.Value, error) {
	if st.Src != "" {
		return resolve(b, env, st.Src)
	}
	t := fallback
	if st.Type != "" {
		var err error
		if t, err = l.Type(st.Type); err != nil {
			return ir.NoValue, err
		}
	}
	c, err := Constant(l.pool, t, st.Value)
	if err != nil {
		return ir.NoValue, err
	}
	return b.Const(c), nil
}

// resolve looks up "@global" in the module and "%name" or "name" in env.
func resolve(b *emit.Builder, env map[string]ir.Value, ref string) (ir.Value, error) {
	if g, ok := strings.CutPrefix(ref, "@"); ok {
		return b.Global(g)
	}
	name := strings.TrimPrefix(ref, "%")
	v, ok := env[name]
	if !ok {
		return ir.NoValue, diag.Errorf(diag.InvalidProgram, ref, "name is not bound")
	}
	return v, nil
}
