package types

import (
	"fmt"
	"strings"
)

// String renders a type the way LLVM assembly spells it. Structs print as
// %name; unknown ids print as <invalid>.
func (in *Interner) String(id TypeID) string {
	var sb strings.Builder
	in.writeType(&sb, id, 0)
	return sb.String()
}

func (in *Interner) writeType(sb *strings.Builder, id TypeID, depth int) {
	tt, ok := in.Lookup(id)
	if !ok || depth > 32 {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindVoid:
		sb.WriteString("void")
	case KindInt:
		fmt.Fprintf(sb, "i%d", tt.Width)
	case KindFloat:
		if tt.Width == Width32 {
			sb.WriteString("float")
		} else {
			sb.WriteString("double")
		}
	case KindArray:
		fmt.Fprintf(sb, "[%d x ", tt.Count)
		in.writeType(sb, tt.Elem, depth+1)
		sb.WriteString("]")
	case KindPointer:
		in.writeType(sb, tt.Elem, depth+1)
		sb.WriteString("*")
	case KindStruct:
		info := in.structInfo(id)
		if info == nil || info.Name == "" {
			fmt.Fprintf(sb, "%%struct.%d", id)
			return
		}
		sb.WriteString("%" + info.Name)
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			sb.WriteString("<invalid>")
			return
		}
		in.writeType(sb, info.Result, depth+1)
		sb.WriteString(" (")
		for i, p := range info.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			in.writeType(sb, p, depth+1)
		}
		if info.Variadic {
			if len(info.Params) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...")
		}
		sb.WriteString(")")
	default:
		sb.WriteString("<invalid>")
	}
}
