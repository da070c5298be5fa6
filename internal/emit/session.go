package emit

import (
	"fmt"

	"irforge/internal/consts"
	"irforge/internal/diag"
	"irforge/internal/ir"
	"irforge/internal/symbols"
	"irforge/internal/trace"
)

// Session holds the state of one module build. Sessions are independent of
// each other and are not safe for concurrent use.
type Session struct {
	mod    *ir.Module
	syms   *symbols.Table
	pool   *consts.Pool
	naming Naming
	tracer trace.Tracer
	parent uint64

	open *Builder
}

// Option configures a Session.
type Option func(*Session)

// WithNaming replaces DefaultNaming.
func WithNaming(n Naming) Option {
	return func(s *Session) {
		if n != nil {
			s.naming = n
		}
	}
}

// WithTracer reports function and instruction events to t. parent is the
// span the function spans are attached to.
func WithTracer(t trace.Tracer, parent uint64) Option {
	return func(s *Session) {
		if t != nil {
			s.tracer = t
			s.parent = parent
		}
	}
}

// NewSession starts building into m. Prototypes are resolved through syms.
func NewSession(m *ir.Module, syms *symbols.Table, opts ...Option) *Session {
	s := &Session{
		mod:    m,
		syms:   syms,
		pool:   consts.NewPool(m.Types),
		naming: DefaultNaming{},
		tracer: trace.Nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Module() *ir.Module { return s.mod }

func (s *Session) Symbols() *symbols.Table { return s.syms }

func (s *Session) Pool() *consts.Pool { return s.pool }

// Declare returns the function called name, declaring it from its prototype
// on first use.
func (s *Session) Declare(name string) (*ir.Func, error) {
	return s.syms.DeclareFunction(s.mod, name)
}

// Begin opens the construction window for fn and positions the insertion
// point at its new entry block. Only one window can be open per session.
func (s *Session) Begin(fn *ir.Func) (*Builder, error) {
	if fn == nil {
		return nil, diag.Errorf(diag.UnknownFunction, "", "function is not declared")
	}
	if s.open != nil {
		return nil, diag.Errorf(diag.SessionBusy, fn.Name, "function %s is still under construction", s.open.fn.Name)
	}
	if owned, ok := s.mod.Func(fn.Name); !ok || owned != fn {
		return nil, diag.Errorf(diag.UnknownFunction, fn.Name, "function is not declared in module %s", s.mod.Name)
	}
	if !fn.IsDeclaration() {
		return nil, diag.Errorf(diag.FunctionRedefined, fn.Name, "function already has a body")
	}

	entry := fn.NewBlock("entry")
	fn.Entry = entry.ID
	b := &Builder{
		s:     s,
		fn:    fn,
		block: entry,
		mark:  s.mod.GlobalMark(),
		span:  trace.BeginFunc(s.tracer, fn.Name, s.parent),
	}
	s.open = b
	return b, nil
}

// DefineFunction emits the body of the declared function name. Statements
// run in order; the value of the last one is returned from the function.
// On any failure the body is discarded and the function stays a
// declaration.
func (s *Session) DefineFunction(name string, stmts ...Statement) (*ir.Func, error) {
	fn, ok := s.mod.Func(name)
	if !ok {
		return nil, diag.Errorf(diag.UnknownFunction, name, "function is not declared")
	}
	b, err := s.Begin(fn)
	if err != nil {
		return nil, err
	}

	ret := ir.NoValue
	for i, stmt := range stmts {
		v, err := stmt(b)
		if err != nil {
			b.abort(err.Error())
			return nil, fmt.Errorf("define %s: statement %d: %w", fn.Name, i+1, err)
		}
		ret = v
	}
	if err := b.TerminateWithReturn(ret); err != nil {
		b.abort(err.Error())
		return nil, fmt.Errorf("define %s: %w", fn.Name, err)
	}
	if err := b.Finish(); err != nil {
		return nil, fmt.Errorf("define %s: %w", fn.Name, err)
	}
	return fn, nil
}

// Statement emits one step of a function body and yields its value, or
// ir.NoValue.
type Statement func(*Builder) (ir.Value, error)

func (s *Session) close(b *Builder) {
	if s.open == b {
		s.open = nil
	}
}
