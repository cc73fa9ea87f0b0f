// Package trace provides the structured tracing used as the logging layer
// of stackc.
//
// # Usage
//
// Enable tracing via command-line flags or the [trace] table of stackc.toml:
//
//	stackc lower --trace=- --trace-level=detail prog.yaml
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when a unit fails
//   - MultiTracer: combines multiple tracers
//
// # Levels and scopes
//
// Each event carries a Scope (driver, pass, unit, node). The Level decides
// which scopes are emitted: phase shows driver and pass boundaries, detail
// adds per-unit events, debug adds one event per lowered tree node.
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "lower", 0)
//	defer span.End("")
package trace
