package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// IR construction
	IRInfo             Code = 1000
	UnknownFunction    Code = 1001
	RedefinedStruct    Code = 1002
	TypeMismatch       Code = 1003
	ArityMismatch      Code = 1004
	ReturnTypeMismatch Code = 1005
	VerificationFailed Code = 1006
	DuplicatePrototype Code = 1007
	DuplicateSymbol    Code = 1008
	FunctionRedefined  Code = 1009
	UnknownGlobal      Code = 1010
	SessionBusy        Code = 1011

	// program description
	PrgInfo        Code = 2000
	InvalidProgram Code = 2001

	// IO
	IOInfo      Code = 4000
	IOWriteFail Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	IRInfo:             "IR information",
	UnknownFunction:    "Unknown function",
	RedefinedStruct:    "Struct body already set",
	TypeMismatch:       "Type mismatch",
	ArityMismatch:      "Aggregate arity mismatch",
	ReturnTypeMismatch: "Return type mismatch",
	VerificationFailed: "Verification failed",
	DuplicatePrototype: "Prototype already registered",
	DuplicateSymbol:    "Symbol already defined",
	FunctionRedefined:  "Function already defined",
	UnknownGlobal:      "Unknown global",
	SessionBusy:        "Another function is under construction",
	PrgInfo:            "Program information",
	InvalidProgram:     "Invalid program description",
	IOInfo:             "IO information",
	IOWriteFail:        "Failed to write output",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PRG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
