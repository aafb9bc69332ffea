// Package trace records structured events from the driver and the lowering
// pass.
//
// Tracers are selected by Config: StreamTracer writes immediately (text or
// NDJSON), RingTracer keeps the last N events for crash dumps, MultiTracer
// fans out to both, and Nop costs nothing when tracing is off.
//
// Levels gate scopes: LevelPhase emits driver and pass spans, LevelDetail adds
// one span per generated function, LevelDebug adds per-tensor points.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "partition", 0)
//	defer span.End("")
package trace
