package ir

import (
	"irforge/internal/consts"
	"irforge/internal/types"
)

type GlobalID int32

// Global is a module-level variable. Init's type always equals Type.
type Global struct {
	ID          GlobalID
	Name        string
	Type        types.TypeID
	Init        consts.Constant
	IsConstant  bool
	Linkage     Linkage
	DSOLocal    bool
	UnnamedAddr bool
	Align       uint32
}
