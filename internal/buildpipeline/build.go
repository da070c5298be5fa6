// Package buildpipeline turns a program description into a rendered module.
package buildpipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"irforge/internal/backend/llvm"
	"irforge/internal/backend/mpack"
	"irforge/internal/diag"
	"irforge/internal/emit"
	"irforge/internal/ir"
	"irforge/internal/observ"
	"irforge/internal/program"
	"irforge/internal/symbols"
	"irforge/internal/trace"
)

// Request configures one build.
type Request struct {
	Program *program.Program
	// Target overrides [module].target when set.
	Target string
	// Format overrides [output].format when set.
	Format Format
	// OutputPath is the file to write; empty writes no file.
	OutputPath string
	// Stdout, when set, receives a copy of the output.
	Stdout io.Writer
	// Naming replaces the default names of compiler-owned globals.
	Naming emit.Naming

	MaxDiagnostics int
	Progress       ProgressSink
}

// Result captures build artefacts and timings.
type Result struct {
	Module      *ir.Module
	Format      Format
	Output      []byte
	Fingerprint uint64
	OutputPath  string
	Timer       *observ.Timer
	Diagnostics *diag.Bag
}

// DefaultOutputPath is [output].path, or "out" plus the format's extension.
func DefaultOutputPath(p *program.Program, format Format) string {
	if p != nil && strings.TrimSpace(p.Output.Path) != "" {
		if p.Path != "" && !filepath.IsAbs(p.Output.Path) && !strings.HasPrefix(p.Path, "<") {
			return filepath.Join(filepath.Dir(p.Path), p.Output.Path)
		}
		return p.Output.Path
	}
	return "out" + format.Ext()
}

type builder struct {
	ctx    context.Context
	req    *Request
	tracer trace.Tracer
	root   *trace.Span
	res    *Result

	lower *program.Lowering
	syms  *symbols.Table
}

// Build runs declare, globals, emit, verify, serialize and write in order.
// It stops at the first failing stage; the partial result is returned with
// the error.
func Build(ctx context.Context, req *Request) (Result, error) {
	var res Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil || req.Program == nil {
		return res, fmt.Errorf("missing build request")
	}
	if err := req.Program.Validate(); err != nil {
		return res, err
	}
	format := req.Format
	if format == "" {
		f, err := ParseFormat(req.Program.Output.Format)
		if err != nil {
			return res, err
		}
		format = f
	}
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 64
	}

	target := req.Target
	if target == "" {
		target = req.Program.Module.Target
	}
	res.Module = ir.NewModule(req.Program.Module.Name, target)
	res.Format = format
	res.OutputPath = req.OutputPath
	res.Timer = observ.NewTimer()
	res.Diagnostics = diag.NewBag(maxDiag)

	tracer := trace.FromContext(ctx)
	b := &builder{
		ctx:    ctx,
		req:    req,
		tracer: tracer,
		root:   trace.Begin(tracer, trace.ScopeDriver, "build:"+res.Module.Name, trace.CurrentSpan(ctx)),
		res:    &res,
		lower:  program.NewLowering(req.Program, res.Module),
		syms:   symbols.NewTable(),
	}

	for _, fn := range req.Program.Functions {
		emitFunc(req.Progress, fn.Name, StatusQueued, nil, 0)
	}

	steps := []struct {
		stage Stage
		run   func(*trace.Span) error
	}{
		{StageDeclare, b.declare},
		{StageGlobals, b.globals},
		{StageEmit, b.emit},
		{StageVerify, b.verify},
		{StageSerialize, b.serialize},
		{StageWrite, b.write},
	}
	for _, step := range steps {
		if err := b.stage(step.stage, step.run); err != nil {
			b.root.Fail(err.Error())
			return res, err
		}
	}
	b.root.WithExtra("bytes", fmt.Sprint(len(res.Output))).End("ok")
	return res, nil
}

func (b *builder) stage(stage Stage, run func(*trace.Span) error) error {
	if err := b.ctx.Err(); err != nil {
		return err
	}
	idx := b.res.Timer.Begin(string(stage))
	span := trace.Begin(b.tracer, trace.ScopeModule, string(stage), b.root.ID())
	emitStage(b.req.Progress, stage, StatusWorking, nil, 0)
	start := time.Now()

	err := run(span)

	elapsed := time.Since(start)
	if err != nil {
		b.res.Timer.End(idx, "failed")
		span.Fail(err.Error())
		emitStage(b.req.Progress, stage, StatusError, err, elapsed)
		b.res.Diagnostics.AddError(err)
		return fmt.Errorf("%s: %w", stage, err)
	}
	b.res.Timer.End(idx, "")
	span.End("")
	emitStage(b.req.Progress, stage, StatusDone, nil, elapsed)
	return nil
}

func (b *builder) declare(*trace.Span) error {
	if err := b.lower.DeclareStructs(); err != nil {
		return err
	}
	if err := b.lower.RegisterPrototypes(b.syms); err != nil {
		return err
	}
	for _, name := range b.syms.Names() {
		if _, err := b.syms.DeclareFunction(b.res.Module, name); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) globals(*trace.Span) error {
	return b.lower.DefineGlobals()
}

// emit defines every function body. A failing function is reported and
// discarded; the remaining functions are still emitted so that all
// failures surface in one run.
func (b *builder) emit(span *trace.Span) error {
	opts := []emit.Option{emit.WithTracer(b.tracer, span.ID())}
	if b.req.Naming != nil {
		opts = append(opts, emit.WithNaming(b.req.Naming))
	}
	sess := emit.NewSession(b.res.Module, b.syms, opts...)

	var first error
	for _, fn := range b.req.Program.Functions {
		if err := b.ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		emitFunc(b.req.Progress, fn.Name, StatusWorking, nil, 0)
		stmts, err := b.lower.Body(fn)
		if err == nil {
			_, err = sess.DefineFunction(fn.Name, stmts...)
		}
		if err != nil {
			emitFunc(b.req.Progress, fn.Name, StatusError, err, time.Since(start))
			if first == nil {
				first = err
				continue
			}
			b.res.Diagnostics.AddError(err)
			continue
		}
		emitFunc(b.req.Progress, fn.Name, StatusDone, nil, time.Since(start))
	}
	return first
}

func (b *builder) verify(*trace.Span) error {
	return ir.Validate(b.res.Module)
}

func (b *builder) serialize(span *trace.Span) error {
	switch b.res.Format {
	case FormatMsgpack:
		var buf bytes.Buffer
		if err := mpack.Encode(&buf, b.res.Module); err != nil {
			return err
		}
		b.res.Output = buf.Bytes()
	default:
		text, err := llvm.EmitModule(b.res.Module)
		if err != nil {
			return err
		}
		b.res.Output = []byte(text)
	}
	b.res.Fingerprint = xxhash.Sum64(b.res.Output)
	span.WithExtra("fingerprint", fmt.Sprintf("%016x", b.res.Fingerprint))
	return nil
}

func (b *builder) write(*trace.Span) error {
	return writeOutputs(b.ctx, b.res.Output, b.req.OutputPath, b.req.Stdout)
}
