package trace

import "context"

type ctxKey struct{}

// binding is what a context carries: the tracer of the build and the span
// new spans should hang under.
type binding struct {
	tracer Tracer
	parent uint64
}

func bound(ctx context.Context) binding {
	if ctx != nil {
		if b, ok := ctx.Value(ctxKey{}).(binding); ok {
			return b
		}
	}
	return binding{tracer: Nop}
}

// WithTracer binds t to ctx. A nil t binds Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	b := bound(ctx)
	b.tracer = t
	return context.WithValue(ctx, ctxKey{}, b)
}

// WithSpan makes span the parent of spans started under the returned
// context. The bound tracer is kept.
func WithSpan(ctx context.Context, span *Span) context.Context {
	b := bound(ctx)
	b.parent = span.ID()
	return context.WithValue(ctx, ctxKey{}, b)
}

// FromContext returns the bound tracer, or Nop.
func FromContext(ctx context.Context) Tracer { return bound(ctx).tracer }

// CurrentSpan returns the bound parent span ID, or 0.
func CurrentSpan(ctx context.Context) uint64 { return bound(ctx).parent }
