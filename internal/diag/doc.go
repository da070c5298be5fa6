// Package diag defines the error taxonomy and the diagnostic model shared by
// every stage of the IR build pipeline.
//
// # Errors
//
// Every failure raised while building a module is a *Error carrying a Code.
// Errors are produced at the point of the offending call and are never
// retried. Callers match them by code:
//
//	if errors.Is(err, diag.ErrTypeMismatch) { ... }
//
// Matching works through any number of fmt.Errorf("...: %w") wrappers, which
// is how the pipeline adds context (function name, global name) on the way up.
//
// # Diagnostics
//
// Diagnostic is the reporting record consumed by internal/diagfmt. The driver
// converts a failed build into diagnostics collected in a Bag, which supports
// a limit, deterministic sorting and severity queries.
//
// Package diag does not perform any formatting or IO.
package diag
