// Package testkit holds invariant checks shared by unit and fuzz tests.
package testkit

import (
	"fmt"
	"strings"

	"texlint/internal/diag"
)

// CheckDiagnosticInvariants verifies the shape of a validator result:
//  1. every diagnostic and note points inside text (line exists, column
//     at most the line length)
//  2. codes are registered, messages are non-empty and severities match
//     the code's default
//  3. per-line findings come in line order and precede the end-of-document
//     tail (unclosed environments, then unclosed brackets)
func CheckDiagnosticInvariants(text string, diags []diag.Diagnostic) error {
	lines := strings.Split(text, "\n")
	inBounds := func(line, col uint32) error {
		if int(line) >= len(lines) {
			return fmt.Errorf("line %d beyond %d lines", line, len(lines))
		}
		if int(col) > len(lines[line]) {
			return fmt.Errorf("column %d beyond line %d of length %d", col, line, len(lines[line]))
		}
		return nil
	}

	var (
		lastLine uint32
		inTail   bool
		lastTail diag.Code
	)
	for i, d := range diags {
		if err := inBounds(d.Line, d.Column); err != nil {
			return fmt.Errorf("diagnostic %d (%s): %w", i, d.Code.ID(), err)
		}
		for _, n := range d.Notes {
			if err := inBounds(n.Line, n.Column); err != nil {
				return fmt.Errorf("note of diagnostic %d (%s): %w", i, d.Code.ID(), err)
			}
		}
		if d.Message == "" {
			return fmt.Errorf("diagnostic %d (%s) has empty message", i, d.Code.ID())
		}
		if _, ok := diag.ParseCode(d.Code.ID()); !ok {
			return fmt.Errorf("diagnostic %d has unregistered code %d", i, uint16(d.Code))
		}
		if d.Severity != d.Code.DefaultSeverity() {
			return fmt.Errorf("diagnostic %d (%s) has severity %s, want %s", i, d.Code.ID(), d.Severity, d.Code.DefaultSeverity())
		}

		tail := d.Code == diag.TexEnvUnclosed || d.Code == diag.TexUnclosedBracket
		switch {
		case tail:
			if inTail && lastTail == diag.TexUnclosedBracket && d.Code == diag.TexEnvUnclosed {
				return fmt.Errorf("diagnostic %d: unclosed environment after unclosed bracket", i)
			}
			inTail = true
			lastTail = d.Code
		case inTail:
			return fmt.Errorf("diagnostic %d (%s) after end-of-document findings", i, d.Code.ID())
		case d.Line < lastLine:
			return fmt.Errorf("diagnostic %d (%s) on line %d after line %d", i, d.Code.ID(), d.Line, lastLine)
		default:
			lastLine = d.Line
		}
	}
	return nil
}

// CheckFormatInvariants verifies a formatter result: formatting again is a
// no-op, and the non-blank lines are the trimmed input lines in order.
func CheckFormatInvariants(input, formatted string, format func(string) string) error {
	if again := format(formatted); again != formatted {
		return fmt.Errorf("format is not idempotent:\nonce:  %q\ntwice: %q", formatted, again)
	}
	want := nonBlankTrimmed(input)
	got := nonBlankTrimmed(formatted)
	if len(want) != len(got) {
		return fmt.Errorf("non-blank line count changed: %d -> %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("line content changed at %d: %q -> %q", i, want[i], got[i])
		}
	}
	return nil
}

func nonBlankTrimmed(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}
