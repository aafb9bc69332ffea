// Package diag defines the diagnostic model shared by the group loader, the
// lowering pass and the CLI.
//
// Diagnostic is the central record: a Severity, a stable numeric Code, a short
// Message, the Subject it refers to (file, function or tensor) and optional
// Notes. Phases emit through a Reporter; BagReporter collects into a Bag, which
// supports limits, deterministic sorting and deduplication.
//
// Package diag performs no IO or formatting. The CLI renders bags, and the
// lowering pass wraps a Code into its own error type for invariant
// violations.
package diag
