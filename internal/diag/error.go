package diag

import (
	"errors"
	"fmt"
)

// Error is the typed failure raised by IR construction. Subject names the
// entity involved; Reason is the human-readable detail.
type Error struct {
	Code    Code
	Subject string
	Reason  string
}

// Sentinels for errors.Is matching. They compare by Code only.
var (
	ErrUnknownFunction    = &Error{Code: UnknownFunction}
	ErrRedefinedStruct    = &Error{Code: RedefinedStruct}
	ErrTypeMismatch       = &Error{Code: TypeMismatch}
	ErrArityMismatch      = &Error{Code: ArityMismatch}
	ErrReturnTypeMismatch = &Error{Code: ReturnTypeMismatch}
	ErrVerification       = &Error{Code: VerificationFailed}
	ErrDuplicatePrototype = &Error{Code: DuplicatePrototype}
	ErrDuplicateSymbol    = &Error{Code: DuplicateSymbol}
	ErrFunctionRedefined  = &Error{Code: FunctionRedefined}
	ErrUnknownGlobal      = &Error{Code: UnknownGlobal}
	ErrSessionBusy        = &Error{Code: SessionBusy}
	ErrInvalidProgram     = &Error{Code: InvalidProgram}
)

// Errorf builds an *Error with a formatted reason.
func Errorf(code Code, subject, format string, args ...any) *Error {
	return &Error{Code: code, Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// VerificationError reports the first structural violation found by the verifier.
func VerificationError(subject, reason string) *Error {
	return &Error{Code: VerificationFailed, Subject: subject, Reason: reason}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Code.ID()
	if e.Subject != "" {
		msg += " " + e.Subject
	}
	if e.Reason != "" {
		return msg + ": " + e.Reason
	}
	return msg + ": " + e.Code.Title()
}

// Is matches any *Error with the same Code, so sentinels work through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// AsError unwraps err to the innermost-first *Error in its chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the Code carried by err, or UnknownCode.
func CodeOf(err error) Code {
	if de, ok := AsError(err); ok {
		return de.Code
	}
	return UnknownCode
}
