// Package emit builds function bodies inside an explicit construction
// session.
//
// A Session owns the module under construction, the symbol table and the
// constant pool, plus at most one open Builder. The Builder is the insertion
// point: every instruction lands at the end of the function's entry block.
//
//	s := emit.NewSession(mod, syms)
//	fn, err := s.DefineFunction("main",
//		func(b *emit.Builder) (ir.Value, error) { return b.LoadGlobal("global_a") },
//	)
//
// A failed definition leaves the function as a declaration.
package emit
