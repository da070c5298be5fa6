package llvm

import (
	"fmt"
	"strconv"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"

	"irforge/internal/ir"
	"irforge/internal/types"
)

func (e *Emitter) declareFuncs() error {
	e.funcs = make([]*llir.Func, len(e.mod.Funcs))
	for i, f := range e.mod.Funcs {
		ret, err := e.llvmType(f.Result)
		if err != nil {
			return fmt.Errorf("llvm: function %s: %w", f.Name, err)
		}
		// the interned signature is authoritative; Proto is the caller's view
		sig, ok := e.types.FnInfo(f.Sig)
		if !ok {
			return fmt.Errorf("llvm: function %s has no signature", f.Name)
		}
		var params []*llir.Param
		for _, p := range sig.Params {
			pt, err := e.llvmType(p)
			if err != nil {
				return fmt.Errorf("llvm: function %s: %w", f.Name, err)
			}
			params = append(params, llir.NewParam("", pt))
		}
		fn := e.out.NewFunc(f.Name, ret, params...)
		fn.Sig.Variadic = sig.Variadic
		fn.Linkage = linkage(f.Linkage)
		if f.DSOLocal && f.Linkage != ir.LinkagePrivate {
			fn.Preemption = enum.PreemptionDSOLocal
		}
		e.funcs[i] = fn
	}
	return nil
}

type funcEmitter struct {
	e      *Emitter
	f      *ir.Func
	fn     *llir.Func
	values map[ir.ValueID]value.Value
	names  map[string]int
}

func (e *Emitter) emitFuncBody(f *ir.Func, fn *llir.Func) error {
	fe := &funcEmitter{
		e:      e,
		f:      f,
		fn:     fn,
		values: make(map[ir.ValueID]value.Value),
		names:  make(map[string]int),
	}
	blocks := make([]*llir.Block, len(f.Blocks))
	for i, b := range f.Blocks {
		blocks[i] = fn.NewBlock(fe.localName(b.Name))
	}
	for i, b := range f.Blocks {
		for j := range b.Instrs {
			if err := fe.instr(blocks[i], &b.Instrs[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

// localName de-duplicates block and value names within one function by
// appending a counter. Unnamed values are numbered by llir.
func (fe *funcEmitter) localName(name string) string {
	if name == "" || isDigits(name) {
		return ""
	}
	n, seen := fe.names[name]
	fe.names[name] = n + 1
	if !seen {
		return name
	}
	for {
		candidate := name + strconv.Itoa(n)
		if _, taken := fe.names[candidate]; !taken {
			fe.names[candidate] = 1
			return candidate
		}
		n++
		fe.names[name] = n + 1
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func (fe *funcEmitter) instr(b *llir.Block, ins *ir.Instr) error {
	switch ins.Op {
	case ir.OpAlloca:
		elem, err := fe.e.llvmType(ins.Elem)
		if err != nil {
			return err
		}
		inst := b.NewAlloca(elem)
		if name := fe.localName(ins.Name); name != "" {
			inst.SetName(name)
		}
		fe.values[ins.Result] = inst
	case ir.OpLoad:
		elem, err := fe.e.llvmType(ins.Type)
		if err != nil {
			return err
		}
		src, err := fe.operand(ins.Args[0])
		if err != nil {
			return err
		}
		fe.values[ins.Result] = b.NewLoad(elem, src)
	case ir.OpStore:
		dst, err := fe.operand(ins.Args[0])
		if err != nil {
			return err
		}
		src, err := fe.operand(ins.Args[1])
		if err != nil {
			return err
		}
		b.NewStore(src, dst)
	case ir.OpAdd, ir.OpSub, ir.OpMul:
		v, err := fe.binary(b, ins)
		if err != nil {
			return err
		}
		fe.values[ins.Result] = v
	case ir.OpRet:
		if len(ins.Args) == 0 {
			b.NewRet(nil)
			return nil
		}
		v, err := fe.operand(ins.Args[0])
		if err != nil {
			return err
		}
		b.NewRet(v)
	default:
		return fmt.Errorf("unsupported instruction %s", ins.Op)
	}
	return nil
}

func (fe *funcEmitter) binary(b *llir.Block, ins *ir.Instr) (value.Value, error) {
	x, err := fe.operand(ins.Args[0])
	if err != nil {
		return nil, err
	}
	y, err := fe.operand(ins.Args[1])
	if err != nil {
		return nil, err
	}
	isFloat := fe.e.types.Kind(ins.Type) == types.KindFloat
	switch {
	case ins.Op == ir.OpAdd && isFloat:
		return b.NewFAdd(x, y), nil
	case ins.Op == ir.OpAdd:
		return b.NewAdd(x, y), nil
	case ins.Op == ir.OpSub && isFloat:
		return b.NewFSub(x, y), nil
	case ins.Op == ir.OpSub:
		return b.NewSub(x, y), nil
	case ins.Op == ir.OpMul && isFloat:
		return b.NewFMul(x, y), nil
	default:
		return b.NewMul(x, y), nil
	}
}

func (fe *funcEmitter) operand(v ir.Value) (value.Value, error) {
	switch v.Kind {
	case ir.ValueConst:
		return fe.e.constant(v.Const)
	case ir.ValueGlobal:
		if v.Global < 0 || int(v.Global) >= len(fe.e.globals) {
			return nil, fmt.Errorf("unknown global G%d", v.Global)
		}
		return fe.e.globals[v.Global], nil
	case ir.ValueInstr:
		if lv, ok := fe.values[v.ID]; ok {
			return lv, nil
		}
		return nil, fmt.Errorf("value %%%d is not defined", v.ID)
	default:
		return nil, fmt.Errorf("missing operand")
	}
}
