package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"irforge/internal/diag"
)

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name    string
	Fields  []TypeID
	HasBody bool
}

// DeclareStruct allocates a nominal, body-less struct type. Two declarations
// with the same name are distinct types.
func (in *Interner) DeclareStruct(name string) TypeID {
	slot := in.appendStructInfo(StructInfo{Name: name})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// SetStructBody sets the field list of a declared struct. A body can be set
// only once; the second call fails with RedefinedStruct.
func (in *Interner) SetStructBody(typeID TypeID, fields []TypeID) error {
	info := in.structInfo(typeID)
	if info == nil {
		return diag.Errorf(diag.TypeMismatch, in.String(typeID), "not a struct type")
	}
	if info.HasBody {
		return diag.Errorf(diag.RedefinedStruct, "%"+info.Name, "struct body already set")
	}
	for i, f := range fields {
		if !in.isValue(f) {
			return diag.Errorf(diag.TypeMismatch, "%"+info.Name, "field %d has invalid type %s", i, in.String(f))
		}
	}
	info.Fields = cloneFields(fields)
	info.HasBody = true
	return nil
}

// StructInfo returns a copy of the metadata for the provided struct TypeID.
// Changing the copy does not affect the interner.
func (in *Interner) StructInfo(typeID TypeID) (StructInfo, bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return StructInfo{}, false
	}
	out := *info
	out.Fields = cloneFields(info.Fields)
	return out, true
}

// StructFields returns a copy of struct fields for the TypeID.
func (in *Interner) StructFields(typeID TypeID) []TypeID {
	info := in.structInfo(typeID)
	if info == nil || len(info.Fields) == 0 {
		return nil
	}
	return cloneFields(info.Fields)
}

// Structs lists struct types in declaration order.
func (in *Interner) Structs() []TypeID {
	out := make([]TypeID, 0, len(in.structs)-1)
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id].Kind == KindStruct {
			out = append(out, id)
		}
	}
	return out
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	if in.structs == nil {
		in.structs = append(in.structs, StructInfo{})
	}
	in.structs = append(in.structs, StructInfo{
		Name:    info.Name,
		Fields:  cloneFields(info.Fields),
		HasBody: info.HasBody,
	})
	slot, err := safecast.Conv[uint32](len(in.structs) - 1)
	if err != nil {
		panic(fmt.Errorf("struct info overflow: %w", err))
	}
	return slot
}

func cloneFields(fields []TypeID) []TypeID {
	if len(fields) == 0 {
		return nil
	}
	return slices.Clone(fields)
}
