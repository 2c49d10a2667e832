// Package trace records what declcheck spends its time on: fixture
// loading, each validation pass, export resolution and, at the debug
// level, every declared type a pass visits.
//
// A tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, t)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "overrides", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
//
// Levels off, error, phase, detail and debug admit progressively finer
// scopes (driver, pass, module, type). Events are either streamed as text
// or NDJSON, kept in a ring buffer that the CLI dumps when a command
// panics, or both.
//
//	declcheck check --trace=trace.ndjson --trace-level=detail app.yaml
package trace
