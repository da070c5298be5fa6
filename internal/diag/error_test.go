package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Errorf(TypeMismatch, "main", "load of i32 from i8*")
	wrapped := fmt.Errorf("function main: %w", err)
	if !errors.Is(wrapped, ErrTypeMismatch) {
		t.Fatalf("expected wrapped error to match ErrTypeMismatch")
	}
	if errors.Is(wrapped, ErrArityMismatch) {
		t.Fatalf("type mismatch must not match arity mismatch")
	}
	if got := CodeOf(wrapped); got != TypeMismatch {
		t.Fatalf("CodeOf = %v, want %v", got, TypeMismatch)
	}
}

func TestErrorMessage(t *testing.T) {
	err := VerificationError("main", "block entry has no terminator")
	want := "IR1006 main: block entry has no terminator"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
	bare := &Error{Code: UnknownGlobal}
	if bare.Error() != "IR1010: Unknown global" {
		t.Fatalf("unexpected bare message %q", bare.Error())
	}
}

func TestBagFromErrorAndSort(t *testing.T) {
	bag := NewBag(2)
	bag.AddError(fmt.Errorf("emit: %w", Errorf(ReturnTypeMismatch, "f", "want i32")))
	bag.Add(Diagnostic{Severity: SevWarning, Code: IRInfo, Message: "note"})
	if bag.Add(Diagnostic{Severity: SevError}) {
		t.Fatalf("bag must respect its limit")
	}
	bag.Sort()
	items := bag.Items()
	if !bag.HasErrors() || items[0].Code != ReturnTypeMismatch {
		t.Fatalf("expected error first, got %+v", items)
	}
	if items[0].Subject != "f" || items[0].Message != "want i32" {
		t.Fatalf("unexpected conversion %+v", items[0])
	}
	if len(items[0].Notes) != 1 {
		t.Fatalf("expected outer context as note")
	}
}

func TestSeverityText(t *testing.T) {
	for _, sev := range []Severity{SevInfo, SevWarning, SevError} {
		text, err := sev.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Severity
		if err := back.UnmarshalText([]byte(strings.ToUpper(string(text)))); err != nil || back != sev {
			t.Fatalf("%s round-tripped to %v, %v", text, back, err)
		}
	}
	if SevWarning.Fails() || !SevError.Fails() {
		t.Fatal("only errors fail a build")
	}
	var sev Severity
	if err := sev.UnmarshalText([]byte("fatal")); err == nil {
		t.Fatal("expected an unknown severity to be rejected")
	}
}
