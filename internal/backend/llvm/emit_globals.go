package llvm

import (
	"fmt"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"

	"irforge/internal/ir"
)

func (e *Emitter) emitGlobals() error {
	e.globals = make([]*llir.Global, len(e.mod.Globals))
	for i, g := range e.mod.Globals {
		init, err := e.constant(g.Init)
		if err != nil {
			return fmt.Errorf("llvm: global %s: %w", g.Name, err)
		}
		def := e.out.NewGlobalDef(g.Name, init)
		def.Immutable = g.IsConstant
		def.Linkage = linkage(g.Linkage)
		if g.DSOLocal && g.Linkage != ir.LinkagePrivate {
			def.Preemption = enum.PreemptionDSOLocal
		}
		if g.UnnamedAddr {
			def.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
		}
		if g.Align > 0 {
			def.Align = llir.Align(g.Align)
		}
		e.globals[i] = def
	}
	return nil
}

// linkage maps to llir's enum; external is the default and stays implicit.
func linkage(l ir.Linkage) enum.Linkage {
	if l == ir.LinkagePrivate {
		return enum.LinkagePrivate
	}
	return enum.LinkageNone
}
