// Package latex implements the structural validator and the formatter for
// LaTeX documents.
//
// Both engines are plain functions over a text buffer. They keep no state
// between calls, perform no IO and never panic on malformed input: every
// anomaly the validator finds becomes a diag.Diagnostic, and the formatter
// only touches whitespace.
//
// The validator recognises a fixed set of constructs:
//
//   - \begin{name} / \end{name} environment markers;
//   - the special characters & % $ # _ and their backslash-escaped forms;
//   - the bracket pairs {}, [] and ().
//
// It does not build a syntax tree and has no notion of macro semantics. In
// particular a % does not start a comment for the purposes of these checks,
// and \{ still counts as a bracket.
//
// Format, CleanWhitespace and AlignEnvironments are independent transforms.
// They are not commutative; callers choose the order, optionally through a
// Pipeline.
package latex
