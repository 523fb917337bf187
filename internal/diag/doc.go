// Package diag defines the diagnostic model shared by the scope builder,
// the driver and the CLI.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string ID (SEMxxxx, IOxxxx, PRJxxxx, ICExxxx), a short message, a primary
// source.Span and optional notes pointing at related locations.
//
// Producers never format or print. They emit through a Reporter, usually via
// the fluent ReportBuilder:
//
//	diag.ReportError(r, diag.SemaImportOnlyMixed, span, msg).
//		WithNote(prev, "previous IMPORT here").
//		Emit()
//
// BagReporter collects into a Bag which the driver sorts and deduplicates
// before FormatShort renders it.
//
// Only recoverable user errors become diagnostics. Compiler-internal
// invariant violations are fatal and travel as panics (see
// symbols.InternalError) until the driver boundary turns them into an
// ObsInternalError diagnostic.
package diag
