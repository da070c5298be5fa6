package diag

// Note attaches secondary context to a diagnostic.
type Note struct {
	Subject string
	Msg     string
}

// Diagnostic is a single reported finding. Subject names the module entity
// (function, global, type) the finding is about; it may be empty.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  string
	Notes    []Note
}

// FromError converts an error returned by the pipeline into a diagnostic.
// Errors that do not carry a Code are reported as UnknownCode.
func FromError(err error) Diagnostic {
	if err == nil {
		return Diagnostic{}
	}
	d := Diagnostic{Severity: SevError, Message: err.Error()}
	if de, ok := AsError(err); ok {
		d.Code = de.Code
		d.Subject = de.Subject
		d.Message = de.Reason
		if outer := err.Error(); outer != de.Error() {
			d.Notes = append(d.Notes, Note{Msg: outer})
		}
	}
	return d
}
