// Package trace records what texlint is doing while it runs.
//
// Tracing is off by default and is enabled from the command line:
//
//	texlint check --trace=- --trace-level=detail cv/
//
// A run opens one driver span, one file span per document and stage spans
// (validate, format) inside them. Spans travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeFile, "check")
//	defer span.End("")
//
// Sinks: a stream writer (text or NDJSON), an in-memory ring that is dumped
// when a command fails, or both through Tee.
package trace
