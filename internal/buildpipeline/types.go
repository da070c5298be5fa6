package buildpipeline

import (
	"fmt"
	"time"
)

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageDeclare declares struct types, registers prototypes and declares functions.
	StageDeclare Stage = "declare"
	// StageGlobals defines module globals.
	StageGlobals Stage = "globals"
	// StageEmit emits function bodies.
	StageEmit Stage = "emit"
	// StageVerify runs the module verifier.
	StageVerify Stage = "verify"
	// StageSerialize renders the module.
	StageSerialize Stage = "serialize"
	// StageWrite writes the rendered bytes to every destination.
	StageWrite Stage = "write"
)

// Stages lists all stages in execution order.
func Stages() []Stage {
	return []Stage{StageDeclare, StageGlobals, StageEmit, StageVerify, StageSerialize, StageWrite}
}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a function (or for the whole module when Func is empty).
type Event struct {
	Func    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Format selects the serializer.
type Format string

const (
	// FormatLLVM renders LLVM assembly.
	FormatLLVM Format = "llvm"
	// FormatMsgpack renders a msgpack module snapshot.
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts "llvm", "msgpack" and "" (llvm).
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "llvm", "ll":
		return FormatLLVM, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: llvm, msgpack)", s)
	}
}

// Ext returns the conventional file extension.
func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".mp"
	}
	return ".ll"
}
