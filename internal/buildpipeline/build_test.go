package buildpipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"irforge/internal/backend/mpack"
	"irforge/internal/diag"
	"irforge/internal/ir"
	"irforge/internal/program"
	"irforge/internal/trace"
)

type recordingSink struct {
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) { s.events = append(s.events, evt) }

func TestBuildDemo(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.ll")
	var stdout bytes.Buffer
	sink := &recordingSink{}

	res, err := Build(context.Background(), &Request{
		Program:    program.Demo(),
		Target:     "x86_64-unknown-linux-gnu",
		OutputPath: out,
		Stdout:     &stdout,
		Progress:   sink,
	})
	if err != nil {
		t.Fatal(err)
	}

	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(res.Output), string(written)); diff != "" {
		t.Fatalf("file differs from result (-result +file):\n%s", diff)
	}
	if diff := cmp.Diff(string(written), stdout.String()); diff != "" {
		t.Fatalf("stdout differs from file (-file +stdout):\n%s", diff)
	}
	if res.Fingerprint != xxhash.Sum64(written) {
		t.Fatal("fingerprint does not match the written bytes")
	}

	m := res.Module
	if len(m.Funcs) != 1 || m.Funcs[0].Name != "main" {
		t.Fatalf("expected exactly main, got %d functions", len(m.Funcs))
	}
	ga, ok := m.Global("global_a")
	if !ok || ga.IsConstant || ga.Init.Bits != 1 {
		t.Fatalf("global_a missing or wrong: %+v", ga)
	}
	var private int
	for _, g := range m.Globals {
		if g.IsConstant && g.Linkage == ir.LinkagePrivate {
			private++
		}
	}
	if private != 3 {
		t.Fatalf("expected 3 private constants, got %d", private)
	}
	main := m.Funcs[0]
	instrs := main.Blocks[0].Instrs
	ret := instrs[len(instrs)-1]
	if ret.Op != ir.OpRet || len(ret.Args) != 1 || instrs[len(instrs)-2].Op != ir.OpLoad {
		t.Fatalf("main must return the loaded global, got %+v", instrs)
	}

	text := string(written)
	for _, want := range []string{
		`@global_a = dso_local global i32 1`,
		`@__constant.main.init_array = private constant`,
		`@__constant.main.point = private constant %struct.point`,
		`@.string = private unnamed_addr constant [6 x i8] c"hello\00", align 1`,
		`define dso_local i32 @main()`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output lacks %q:\n%s", want, text)
		}
	}

	var stages []Stage
	for _, evt := range sink.events {
		if evt.Func == "" && evt.Status == StatusDone {
			stages = append(stages, evt.Stage)
		}
	}
	if diff := cmp.Diff(Stages(), stages); diff != "" {
		t.Fatalf("stage order (-want +got):\n%s", diff)
	}
	if res.Timer.Len() != len(Stages()) {
		t.Fatalf("timer recorded %d phases", res.Timer.Len())
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	build := func() Result {
		res, err := Build(context.Background(), &Request{Program: program.Demo(), Target: "riscv64-unknown-elf"})
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := build(), build()
	if diff := cmp.Diff(string(a.Output), string(b.Output)); diff != "" {
		t.Fatalf("builds differ:\n%s", diff)
	}
	if a.Fingerprint != b.Fingerprint {
		t.Fatal("fingerprints differ")
	}
}

func TestBuildMsgpack(t *testing.T) {
	res, err := Build(context.Background(), &Request{Program: program.Demo(), Format: FormatMsgpack})
	if err != nil {
		t.Fatal(err)
	}
	snap, err := mpack.Decode(bytes.NewReader(res.Output))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "ir-builder" || len(snap.Globals) != 4 {
		t.Fatalf("unexpected snapshot: %s with %d globals", snap.Name, len(snap.Globals))
	}
}

const badReturn = `
[module]
name = "bad"

[[prototype]]
name = "ok"
result = "void"

[[prototype]]
name = "wrong"
result = "i32"

[[function]]
name = "wrong"
  [[function.stmt]]
  op = "literal"
  type = "i8"
  value = 1

[[function]]
name = "ok"
`

func TestBuildReportsFailingFunction(t *testing.T) {
	p, err := program.Decode(strings.NewReader(badReturn))
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "bad.ll")
	sink := &recordingSink{}
	res, err := Build(context.Background(), &Request{Program: p, OutputPath: out, Progress: sink})
	if !errors.Is(err, diag.ErrReturnTypeMismatch) {
		t.Fatalf("expected ReturnTypeMismatch, got %v", err)
	}
	if res.Output != nil {
		t.Fatal("no output may be produced")
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("output file must not exist, stat: %v", statErr)
	}
	if !res.Diagnostics.HasErrors() {
		t.Fatal("failure must be recorded as a diagnostic")
	}
	statuses := map[string]Status{}
	for _, evt := range sink.events {
		if evt.Func != "" {
			statuses[evt.Func] = evt.Status
		}
	}
	if statuses["wrong"] != StatusError || statuses["ok"] != StatusDone {
		t.Fatalf("unexpected function statuses %v", statuses)
	}
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, &Request{Program: program.Demo()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildTracesStages(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelFunc)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := Build(ctx, &Request{Program: program.Demo()}); err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	windows := map[string]bool{}
	for _, ev := range ring.Snapshot() {
		names[ev.Name] = true
		if ev.Scope == trace.ScopeFunction {
			windows[ev.Func] = true
		}
	}
	for _, want := range []string{"build:ir-builder", "declare", "emit", "serialize"} {
		if !names[want] {
			t.Errorf("trace lacks %q", want)
		}
	}
	if !windows["main"] {
		t.Error("trace lacks the window of main")
	}
	if failed := ring.FailedFuncs(); len(failed) != 0 {
		t.Errorf("FailedFuncs = %v for a clean build", failed)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	p := &program.Program{Path: filepath.Join("proj", "irforge.toml")}
	if got := DefaultOutputPath(p, FormatMsgpack); got != "out.mp" {
		t.Fatalf("got %q", got)
	}
	p.Output.Path = "build/main.ll"
	if got := DefaultOutputPath(p, FormatLLVM); got != filepath.Join("proj", "build", "main.ll") {
		t.Fatalf("got %q", got)
	}
}
