package symbols

import (
	"fmt"

	"irforge/internal/ir"
)

// DeclareFunction returns the function called name in m, declaring it from
// its registered prototype on first use. Repeated calls return the same
// function, so forward references never create duplicate symbols.
func (t *Table) DeclareFunction(m *ir.Module, name string) (*ir.Func, error) {
	if f, ok := m.Func(name); ok {
		return f, nil
	}
	proto, err := t.Lookup(name)
	if err != nil {
		return nil, err
	}
	f, err := m.NewFunc(&proto)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", proto.Name, err)
	}
	f.Linkage = ir.LinkageExternal
	f.DSOLocal = true
	return f, nil
}
