// Package trace is the logging layer of fsema.
//
// Events are leveled and scoped: the driver emits unit and pass spans, and
// the symbols package emits node-level points (scope creation, type
// interning, derived-type instantiation) when a tracer is attached to its
// Table.
//
// # Usage
//
//	fsema dump --trace=- --trace-level=debug unit.toml
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for post-mortem dumps
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// LevelPhase emits ScopeDriver and ScopePass events, LevelDetail adds
// ScopeUnit, LevelDebug adds ScopeNode.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "build", 0)
//	defer span.End("")
package trace
