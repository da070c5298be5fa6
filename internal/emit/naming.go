package emit

// Naming decides the symbol names of compiler-owned globals.
type Naming interface {
	// ConstantName names the backing global of a constant local.
	ConstantName(fn, name string) string
	// StringName names the global holding a string literal.
	StringName(fn, name string) string
}

// DefaultNaming produces "__constant.<fn>.<name>" for constant backings and
// ".<name>" for strings.
type DefaultNaming struct{}

func (DefaultNaming) ConstantName(fn, name string) string {
	return "__constant." + fn + "." + name
}

func (DefaultNaming) StringName(_, name string) string {
	return "." + name
}
