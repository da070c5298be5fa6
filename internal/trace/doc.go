// Package trace records what a build does: the request, its pipeline
// stages, each function's construction window and every emitted
// instruction.
//
// Events below the stage level carry a Site naming the function, the value
// number and the global involved, so a trace reads like the module being
// built:
//
//	#12    instr    • alloca @main %1 (acc)
//	#13    instr    • constant @main @__constant.main.k (k)
//	#14    function ✗ define @main (load i64 from a i32 cell)
//
// A StreamTracer writes events as they happen. A RingTracer keeps the
// latest ones and, when a build fails, DumpFailures prints only the windows
// of the functions that failed. Levels pick how fine the record is:
// off, error (ring only), stage, func and instr.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, "emit", trace.CurrentSpan(ctx))
//	defer span.End("")
package trace
