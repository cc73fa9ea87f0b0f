// Package diag defines the diagnostic model shared by the driver, the CLI and
// the lowering engine's error surface.
//
// A Code is the small integer a failed lowering carries; Diagnostic wraps it
// with a severity, message, unit path and span for reporting. Bag collects
// diagnostics per run and supports sorting and deduplication so output stays
// deterministic. Rendering lives in cmd/stackc.
package diag
