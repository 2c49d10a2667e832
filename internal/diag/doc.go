// Package diag defines the diagnostic model shared by every validation pass.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Code – numeric identifier rendered as CSxxxx (codes.go). Each code has a
//     default severity, a short title and a message template with positional
//     {n} placeholders.
//   - Severity – Info, Warning or Error. Policy can promote or mute warnings
//     after validation.
//   - Args – the positional arguments the message was rendered from. Two
//     diagnostics are duplicates when code, span, location and arguments match.
//   - Primary – the identifier span the finding is about, or source.NoSpan with
//     Location set to a module or assembly display name.
//   - Order – the declaration ordinal of the offending symbol; it breaks ties
//     between findings on the same span.
//   - Notes – optional secondary spans ("previous definition is here").
//
// # Emitting diagnostics
//
// Passes hold a Reporter and build findings with Report/ReportAt, optionally
// chaining Ordered and WithNote before Emit. Sink is the shared concurrent
// destination: passes run in parallel and append to it, and Drain returns a
// Bag sorted by (file, start, end, order, code, args) and deduplicated, so the
// output never depends on goroutine scheduling.
//
// Rendering lives in internal/diagfmt; FormatGoldenDiagnostics here is the
// line format used by tests and the CLI short output.
package diag
