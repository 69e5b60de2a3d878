// Package diag defines the diagnostic model shared by the LaTeX checks and
// every consumer that renders or transports their findings.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by
//     the validator (environment, escape and bracket checks) and by the
//     driver (I/O, cache).
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting beyond the one-line golden
// form, and has no IO, CLI integration or interactive behaviour. Rendering
// lives in internal/diagfmt, the editor protocol in internal/lsp.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form
//     (TEX1001, IO4001, ...).
//   - Message – human oriented text; keep it short and actionable.
//   - Line, Column – 0-based; Column is a byte offset within the line.
//     Renderers convert to whatever their consumer expects (1-based display,
//     UTF-16 code units for editors).
//   - Notes – optional secondary positions, e.g. where a mismatched bracket
//     was opened.
//
// Emission order is meaningful: checks report in the order they discover
// problems, and Bag keeps that order unless Sort is called explicitly.
package diag
