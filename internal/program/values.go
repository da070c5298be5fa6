package program

import (
	"math"

	"irforge/internal/consts"
	"irforge/internal/diag"
	"irforge/internal/types"
)

// Constant converts a decoded TOML value to a constant of type t. Integers
// accept ints and booleans, floats accept ints and floats, arrays and structs
// accept lists, and [N x i8] also accepts a string.
func Constant(pool *consts.Pool, t types.TypeID, v any) (consts.Constant, error) {
	in := pool.Types()
	tt, ok := in.Lookup(t)
	if !ok {
		return consts.Constant{}, diag.Errorf(diag.TypeMismatch, "", "unknown type")
	}
	switch tt.Kind {
	case types.KindInt:
		switch x := v.(type) {
		case int64:
			return pool.Int(t, x)
		case bool:
			if x {
				return pool.Int(t, 1)
			}
			return pool.Int(t, 0)
		case float64:
			if x == math.Trunc(x) && math.Abs(x) < 1<<63 {
				return pool.Int(t, int64(x))
			}
		}
	case types.KindFloat:
		switch x := v.(type) {
		case float64:
			return pool.Float(t, x)
		case int64:
			return pool.Float(t, float64(x))
		}
	case types.KindArray:
		if s, ok := v.(string); ok && tt.Elem == in.Builtins().I8 {
			return stringConstant(pool, t, tt.Count, s)
		}
		items, ok := v.([]any)
		if !ok {
			break
		}
		elems := make([]consts.Constant, 0, len(items))
		for _, item := range items {
			c, err := Constant(pool, tt.Elem, item)
			if err != nil {
				return consts.Constant{}, err
			}
			elems = append(elems, c)
		}
		return pool.Array(tt.Elem, tt.Count, elems)
	case types.KindStruct:
		items, ok := v.([]any)
		if !ok {
			break
		}
		fields := in.StructFields(t)
		if len(items) != len(fields) {
			return consts.Constant{}, diag.Errorf(diag.ArityMismatch, in.String(t), "got %d fields, want %d", len(items), len(fields))
		}
		out := make([]consts.Constant, len(items))
		for i, item := range items {
			c, err := Constant(pool, fields[i], item)
			if err != nil {
				return consts.Constant{}, err
			}
			out[i] = c
		}
		return pool.Struct(t, out)
	}
	return consts.Constant{}, diag.Errorf(diag.TypeMismatch, in.String(t), "cannot use %T value as %s", v, in.String(t))
}

// stringConstant fills [n x i8] from s, appending the NUL terminator when
// there is room for exactly one more byte.
func stringConstant(pool *consts.Pool, t types.TypeID, n uint64, s string) (consts.Constant, error) {
	if uint64(len(s))+1 == n {
		return pool.StringBytes(s), nil
	}
	i8 := pool.Types().Builtins().I8
	if uint64(len(s)) != n {
		return consts.Constant{}, diag.Errorf(diag.ArityMismatch, pool.Types().String(t), "string has %d bytes, want %d", len(s), n)
	}
	elems := make([]consts.Constant, len(s))
	for i := 0; i < len(s); i++ {
		c, err := pool.Int(i8, int64(s[i]))
		if err != nil {
			return consts.Constant{}, err
		}
		elems[i] = c
	}
	return pool.Array(i8, n, elems)
}
