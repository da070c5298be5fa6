// Package llvm renders a verified module as LLVM assembly.
package llvm

import (
	"fmt"

	llir "github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"

	"irforge/internal/ir"
	"irforge/internal/types"
)

// Emitter lowers one module into a fresh llir module. It is discarded after
// use, so the source module is never touched.
type Emitter struct {
	mod   *ir.Module
	types *types.Interner
	out   *llir.Module

	typeCache map[types.TypeID]lltypes.Type
	structs   map[types.TypeID]*lltypes.StructType
	globals   []*llir.Global
	funcs     []*llir.Func
}

// EmitModule verifies mod and returns its LLVM assembly. Output is a pure
// function of the module: equal modules render to equal text.
func EmitModule(mod *ir.Module) (string, error) {
	if mod == nil {
		return "", fmt.Errorf("llvm: nil module")
	}
	if err := ir.Validate(mod); err != nil {
		return "", fmt.Errorf("llvm: %w", err)
	}
	e := &Emitter{
		mod:       mod,
		types:     mod.Types,
		out:       llir.NewModule(),
		typeCache: make(map[types.TypeID]lltypes.Type),
		structs:   make(map[types.TypeID]*lltypes.StructType),
	}
	e.out.SourceFilename = mod.Name
	e.out.TargetTriple = mod.Target

	if err := e.emitTypeDefs(); err != nil {
		return "", err
	}
	if err := e.emitGlobals(); err != nil {
		return "", err
	}
	if err := e.declareFuncs(); err != nil {
		return "", err
	}
	for i, f := range mod.Funcs {
		if f.IsDeclaration() {
			continue
		}
		if err := e.emitFuncBody(f, e.funcs[i]); err != nil {
			return "", fmt.Errorf("llvm: function %s: %w", f.Name, err)
		}
	}
	return e.out.String(), nil
}
