package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags undoes flag values left behind by earlier Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	resetFlags(rootCmd)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDemoCommandPrintsAndWrites(t *testing.T) {
	chdir(t, t.TempDir())
	out, _, err := runCLI(t, "demo", "--ui", "off", "--quiet", "--color", "off", "--target", "x86_64-unknown-linux-gnu")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	data, err := os.ReadFile("out.ll")
	if err != nil {
		t.Fatalf("read out.ll: %v", err)
	}
	if out != string(data) {
		t.Fatalf("stdout and out.ll differ")
	}
	for _, want := range []string{"@global_a = dso_local global i32 1", "define dso_local i32 @main()", "load i32"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

const brokenProgram = `
[module]
name = "broken"

[[prototype]]
name = "f"
result = "i32"

[[function]]
name = "f"
  [[function.stmt]]
  op = "literal"
  type = "i64"
  value = 1
`

func TestBuildReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, manifestName), []byte(brokenProgram), 0o600); err != nil {
		t.Fatal(err)
	}
	_, stderr, err := runCLI(t, "build", dir, "--ui", "off", "--color", "off", "--out", filepath.Join(dir, "x.ll"))
	if err != errReported {
		t.Fatalf("expected reported failure, got %v", err)
	}
	if !strings.Contains(stderr, "error[IR1005] f:") {
		t.Fatalf("unexpected diagnostics:\n%s", stderr)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "x.ll")); !os.IsNotExist(statErr) {
		t.Fatalf("failed build must not write output")
	}
}

func TestBuildMsgpackThenRender(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if _, _, err := runCLI(t, "demo", "--ui", "off", "--quiet", "--out", "out.ll"); err != nil {
		t.Fatalf("demo: %v", err)
	}
	src := filepath.Join(dir, manifestName)
	demoSrc, _, err := runCLI(t, "demo", "--source")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte(demoSrc), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "build", "--ui", "off", "--quiet", "--format", "msgpack", "--out", "out.mp"); err != nil {
		t.Fatalf("build msgpack: %v", err)
	}
	rendered, _, err := runCLI(t, "render", "out.mp")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want, err := os.ReadFile("out.ll")
	if err != nil {
		t.Fatal(err)
	}
	if rendered != string(want) {
		t.Fatalf("render differs from direct build:\n%s\n---\n%s", rendered, want)
	}
}

func TestDumpIRShowsFailedModule(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, manifestName), []byte(brokenProgram), 0o600); err != nil {
		t.Fatal(err)
	}
	_, stderr, err := runCLI(t, "build", dir, "--ui", "off", "--color", "off", "--dump-ir", "--out", filepath.Join(dir, "x.ll"))
	if err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(stderr, `module "broken"`) {
		t.Fatalf("expected module dump in:\n%s", stderr)
	}
}

func TestFailedBuildDumpsTraceOfFailingFunction(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, manifestName), []byte(brokenProgram), 0o600); err != nil {
		t.Fatal(err)
	}
	_, stderr, err := runCLI(t, "build", dir, "--ui", "off", "--color", "off",
		"--trace-level", "error", "--trace-mode", "ring", "--out", filepath.Join(dir, "x.ll"))
	if err != errReported {
		t.Fatalf("expected reported failure, got %v", err)
	}
	if !strings.Contains(stderr, "trace of @f (") || !strings.Contains(stderr, "✗ define @f") {
		t.Fatalf("ring dump lacks the window of f:\n%s", stderr)
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
