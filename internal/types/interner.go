package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Void   TypeID
	I1     TypeID
	I8     TypeID
	I16    TypeID
	I32    TypeID
	I64    TypeID
	Float  TypeID
	Double TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Struct types bypass the index: each declaration gets its own identity.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	structs  []StructInfo
	fns      []FnInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.fns = append(in.fns, FnInfo{})
	in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.I1 = in.Intern(MakeInt(Width1))
	in.builtins.I8 = in.Intern(MakeInt(Width8))
	in.builtins.I16 = in.Intern(MakeInt(Width16))
	in.builtins.I32 = in.Intern(MakeInt(Width32))
	in.builtins.I64 = in.Intern(MakeInt(Width64))
	in.builtins.Float = in.Intern(MakeFloat(Width32))
	in.builtins.Double = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid || t.Kind == KindStruct || t.Kind == KindFn {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// Void returns the void type.
func (in *Interner) Void() TypeID {
	return in.builtins.Void
}

// Int interns an integer type. Widths outside 1..64 yield NoTypeID.
func (in *Interner) Int(width uint) TypeID {
	if width == 0 || width > MaxIntWidth {
		return NoTypeID
	}
	return in.Intern(MakeInt(Width(width)))
}

// Float interns a float type. Only 32 (float) and 64 (double) are supported.
func (in *Interner) Float(precision uint) TypeID {
	switch precision {
	case 32:
		return in.builtins.Float
	case 64:
		return in.builtins.Double
	default:
		return NoTypeID
	}
}

// Array interns [count x elem]. Void and unknown element types yield NoTypeID.
func (in *Interner) Array(elem TypeID, count uint64) TypeID {
	if !in.isValue(elem) {
		return NoTypeID
	}
	return in.Intern(MakeArray(elem, count))
}

// Pointer interns elem*.
func (in *Interner) Pointer(elem TypeID) TypeID {
	if _, ok := in.Lookup(elem); !ok {
		return NoTypeID
	}
	return in.Intern(MakePointer(elem))
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	if t.Kind != KindStruct && t.Kind != KindFn {
		in.index[typeKey(t)] = id
	}
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// Len reports the number of allocated TypeIDs, including NoTypeID.
func (in *Interner) Len() int {
	return len(in.types)
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Kind is a shorthand for Lookup(id).Kind; unknown ids report KindInvalid.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// isValue reports whether id can be the type of a stored value.
func (in *Interner) isValue(id TypeID) bool {
	k := in.Kind(id)
	return k != KindInvalid && k != KindVoid && k != KindFn
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint64
	Width   Width
	Payload uint32
}
