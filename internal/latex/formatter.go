package latex

import (
	"fmt"
	"strings"
)

// Spaces per nesting level.
const (
	DefaultIndentSize = 4
	MaxIndentSize     = 16
)

// FormatOptions tunes FormatWith.
type FormatOptions struct {
	// IndentSize is the number of spaces per level; values <= 0 select
	// DefaultIndentSize, values above MaxIndentSize are capped.
	IndentSize int
}

// CheckIndentSize reports an indent outside [1, MaxIndentSize].
func CheckIndentSize(n int) error {
	if n < 1 || n > MaxIndentSize {
		return fmt.Errorf("indent must be between 1 and %d, got %d", MaxIndentSize, n)
	}
	return nil
}

// DefaultFormatOptions returns the options used by Format.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{IndentSize: DefaultIndentSize}
}

// Format re-indents text by \begin/\end nesting and separates section
// headings from the following line.
func Format(text string) string {
	return FormatWith(text, DefaultFormatOptions())
}

// FormatSelection formats a fragment of a larger document. Nesting is
// counted from the start of the fragment.
func FormatSelection(text string) string {
	return FormatSelectionWith(text, DefaultFormatOptions())
}

// FormatSelectionWith is FormatSelection with explicit options.
func FormatSelectionWith(text string, opts FormatOptions) string {
	return FormatWith(text, opts)
}

// FormatWith is Format with explicit options.
func FormatWith(text string, opts FormatOptions) string {
	unit := opts.IndentSize
	switch {
	case unit <= 0:
		unit = DefaultIndentSize
	case unit > MaxIndentSize:
		unit = MaxIndentSize
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	level := 0
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			out = append(out, "")
			continue
		}

		if strings.HasPrefix(line, `\end{`) {
			level = max(0, level-1)
		}
		out = append(out, strings.Repeat(" ", level*unit)+line)
		if strings.HasPrefix(line, `\begin{`) {
			level++
		}

		if isSectionHeading(line) && i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			out = append(out, "")
		}
	}
	return strings.Join(out, "\n")
}

func isSectionHeading(line string) bool {
	return strings.HasPrefix(line, `\section`) || strings.HasPrefix(line, `\subsection`)
}

// CleanWhitespace strips trailing spaces and tabs from every line and
// collapses runs of three or more newlines into exactly two.
func CleanWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	start := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] != '\n' && text[i] != '\r' {
			continue
		}
		b.WriteString(strings.TrimRight(text[start:i], " \t"))
		if i < len(text) {
			b.WriteByte(text[i])
		}
		start = i + 1
	}
	return collapseNewlines(b.String())
}

func collapseNewlines(s string) string {
	if !strings.Contains(s, "\n\n\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	run := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			run++
			continue
		}
		writeNewlines(&b, run)
		run = 0
		b.WriteByte(s[i])
	}
	writeNewlines(&b, run)
	return b.String()
}

func writeNewlines(b *strings.Builder, run int) {
	if run >= 3 {
		run = 2
	}
	for range run {
		b.WriteByte('\n')
	}
}

// AlignEnvironments normalises spacing around & on every line that contains
// one. It is not aware of escapes: \& is treated as a separator too.
func AlignEnvironments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "&") {
			continue
		}
		cells := strings.Split(line, "&")
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		lines[i] = strings.Join(cells, "  &  ")
	}
	return strings.Join(lines, "\n")
}
