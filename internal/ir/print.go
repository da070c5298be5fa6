package ir

import (
	"fmt"
	"io"
	"strings"
)

// DumpOptions configures module dumping.
type DumpOptions struct {
	// Locals lists each function's named stack cells before its blocks.
	Locals bool
}

// DumpModule writes a compact human-readable representation of m. Unlike the
// backends it does not require m to verify, which makes it useful for
// inspecting a half-built module.
func DumpModule(w io.Writer, m *Module, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %q target=%q\n", m.Name, m.Target)

	if structs := m.Types.Structs(); len(structs) > 0 {
		fmt.Fprintf(&sb, "structs=%d\n", len(structs))
		for _, id := range structs {
			fields := m.Types.StructFields(id)
			parts := make([]string, len(fields))
			for i, f := range fields {
				parts[i] = m.Types.String(f)
			}
			fmt.Fprintf(&sb, "  %s = {%s}\n", m.Types.String(id), strings.Join(parts, ", "))
		}
	}

	fmt.Fprintf(&sb, "globals=%d\n", len(m.Globals))
	for _, g := range m.Globals {
		flags := g.Linkage.String()
		if g.IsConstant {
			flags += " const"
		}
		fmt.Fprintf(&sb, "  G%d: %s %s name=%s\n", g.ID, m.Types.String(g.Type), flags, g.Name)
	}

	fmt.Fprintf(&sb, "funcs=%d\n", len(m.Funcs))
	for _, f := range m.Funcs {
		dumpFunc(&sb, m, f, opts)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func dumpFunc(sb *strings.Builder, m *Module, f *Func, opts DumpOptions) {
	kind := "fn"
	if f.IsDeclaration() {
		kind = "declare"
	}
	fmt.Fprintf(sb, "\n%s %s: %s\n", kind, f.Name, m.Types.String(f.Sig))
	if opts.Locals && len(f.Locals) > 0 {
		sb.WriteString("  locals:\n")
		for i, l := range f.Locals {
			fmt.Fprintf(sb, "    L%d: %s name=%s addr=%%%d\n", i, m.Types.String(l.Type), l.Name, l.Addr)
		}
	}
	for _, b := range f.Blocks {
		fmt.Fprintf(sb, "  %s:\n", blockName(b))
		for i := range b.Instrs {
			fmt.Fprintf(sb, "    %s\n", formatInstr(m, &b.Instrs[i]))
		}
	}
}

func formatInstr(m *Module, ins *Instr) string {
	var sb strings.Builder
	if ins.Result != NoValueID {
		fmt.Fprintf(&sb, "%%%d = ", ins.Result)
	}
	sb.WriteString(ins.Op.String())
	if ins.Op == OpAlloca {
		sb.WriteString(" " + m.Types.String(ins.Elem))
	}
	for i, a := range ins.Args {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(formatOperand(m, a))
	}
	if ins.Name != "" {
		fmt.Fprintf(&sb, " name=%s", ins.Name)
	}
	return sb.String()
}

func formatOperand(m *Module, v Value) string {
	switch v.Kind {
	case ValueGlobal:
		if int(v.Global) < len(m.Globals) && v.Global >= 0 {
			return "@" + m.Globals[v.Global].Name
		}
	case ValueConst:
		return fmt.Sprintf("%s const(%s)", m.Types.String(v.Type), v.Const.Kind)
	}
	return v.String()
}
