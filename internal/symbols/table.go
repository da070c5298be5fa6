// Package symbols is the authoritative function namespace of a build: it maps
// names to prototypes and turns prototypes into module declarations.
package symbols

import (
	"irforge/internal/diag"
	"irforge/internal/ir"
)

// Table maps function names to prototypes. Prototypes are copied on the way
// in and on the way out, so callers can never mutate a registered one.
type Table struct {
	protos map[string]ir.Prototype
	order  []string
}

// NewTable builds an empty table.
func NewTable() *Table {
	return &Table{protos: make(map[string]ir.Prototype)}
}

// Register adds a prototype and fails with DuplicatePrototype if the name is
// already registered.
func (t *Table) Register(name string, proto ir.Prototype) (ir.Prototype, error) {
	name = ir.CanonicalName(name)
	if _, ok := t.protos[name]; ok {
		return ir.Prototype{}, diag.Errorf(diag.DuplicatePrototype, name, "prototype already registered")
	}
	return t.store(name, proto), nil
}

// Reregister adds or replaces a prototype; the last write wins. Functions
// already declared keep the signature they were declared with.
func (t *Table) Reregister(name string, proto ir.Prototype) ir.Prototype {
	return t.store(ir.CanonicalName(name), proto)
}

// Lookup returns the prototype registered under name.
func (t *Table) Lookup(name string) (ir.Prototype, error) {
	name = ir.CanonicalName(name)
	p, ok := t.protos[name]
	if !ok {
		return ir.Prototype{}, diag.Errorf(diag.UnknownFunction, name, "no prototype registered")
	}
	return p.Clone(), nil
}

// Names lists registered names in first-registration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len reports the number of registered prototypes.
func (t *Table) Len() int {
	return len(t.protos)
}

func (t *Table) store(name string, proto ir.Prototype) ir.Prototype {
	p := proto.Clone()
	p.Name = name
	if _, ok := t.protos[name]; !ok {
		t.order = append(t.order, name)
	}
	t.protos[name] = p
	return p.Clone()
}
