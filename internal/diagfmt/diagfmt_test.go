package diagfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"irforge/internal/diag"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(8)
	bag.AddError(fmt.Errorf("define main: statement 1: %w", diag.Errorf(diag.TypeMismatch, "main", "store i32 into *i64")))
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.IRInfo, Message: "empty module"})
	bag.Sort()
	return bag
}

func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{ShowNotes: true})
	want := "error[IR1003] main: store i32 into *i64\n" +
		"  = note: define main: statement 1: IR1003 main: store i32 into *i64\n" +
		"warning[IR1000] empty module\n"
	got := buf.String()
	if !strings.HasPrefix(got, "error[IR1003] main: store i32 into *i64\n") {
		t.Fatalf("unexpected header:\n%s", got)
	}
	if !strings.Contains(got, "  = note: define main: statement 1: ") || !strings.HasSuffix(got, "warning[IR1000] empty module\n") {
		t.Fatalf("unexpected output:\n%s\nroughly want:\n%s", got, want)
	}
}

func TestPrettyHidesNotes(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{})
	if strings.Contains(buf.String(), "note") {
		t.Fatalf("notes must be hidden:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "IR1003" || out.Diagnostics[0].Subject != "main" || out.Diagnostics[0].Severity != "error" {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Fatalf("notes must be omitted")
	}
}
