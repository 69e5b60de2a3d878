package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"texlint/internal/diag"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, gutter, bold *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgCyan),
		gutter: mk(color.FgBlue),
		bold:   mk(color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строки контекста с подчёркиванием ^~~~, затем Notes.
// Строки и колонки выводятся с 1.
func Pretty(w io.Writer, reports []Report, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, r := range reports {
		path := r.displayPath(opts.PathMode, opts.BaseDir)
		for _, d := range r.Items() {
			if err := prettyOne(w, p, r, path, d, opts); err != nil {
				return err
			}
		}
		if n := r.dropped(); n > 0 {
			if _, err := fmt.Fprintf(w, "%s %s: %s not shown (raise --max-diagnostics)\n\n",
				p.note.Sprint("note:"), path, plural(n, "more diagnostic")); err != nil {
				return err
			}
		}
	}
	return nil
}

func prettyOne(w io.Writer, p palette, r Report, path string, d diag.Diagnostic, opts PrettyOpts) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s\n",
		p.bold.Sprintf("%s:%d:%d", path, d.Line+1, d.Column+1),
		p.severity(d.Severity).Sprintf("%s %s", d.Severity, d.Code.ID()),
		d.Message)

	if r.File != nil {
		writeSnippet(&b, p, r, d, opts)
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), path, n.Line+1, n.Column+1, n.Msg)
		}
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSnippet(b *strings.Builder, p palette, r Report, d diag.Diagnostic, opts PrettyOpts) {
	first := d.Line
	if ctx := uint32(max(opts.Context, 0)); ctx > 0 {
		if ctx > first {
			first = 0
		} else {
			first -= ctx
		}
	}
	gutterWidth := len(strconv.FormatUint(uint64(d.Line)+1, 10))

	for ln := first; ln <= d.Line; ln++ {
		text := expandTabs(r.lineText(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "...")
		}
		fmt.Fprintf(b, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln+1), text)
	}

	line := r.lineText(d.Line)
	col := min(int(d.Column), len(line))
	pad := runewidth.StringWidth(expandTabs(line[:col]))
	width := max(runewidth.StringWidth(expandTabs(line[col:col+TokenLen(line, col)])), 1)
	marker := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(b, " %s %s%s\n",
		p.gutter.Sprintf("%*s |", gutterWidth, ""),
		strings.Repeat(" ", pad),
		p.severity(d.Severity).Sprint(marker))
}

// TokenLen returns the length of the construct starting at col:
// a whole \name{arg} marker, a \name command, or a single character.
func TokenLen(line string, col int) int {
	if col >= len(line) {
		return 0
	}
	if line[col] != '\\' {
		return 1
	}
	i := col + 1
	for i < len(line) && isLetter(line[i]) {
		i++
	}
	if i == col+1 {
		return min(2, len(line)-col)
	}
	if i < len(line) && line[i] == '{' {
		if end := strings.IndexByte(line[i:], '}'); end >= 0 {
			i += end + 1
		}
	}
	return i - col
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// Summary prints the final "N errors, M warnings" line.
func Summary(w io.Writer, files, errors, warnings int, useColor bool) error {
	p := newPalette(useColor)
	var parts []string
	switch {
	case errors == 0 && warnings == 0:
		_, err := fmt.Fprintf(w, "%s %s\n", p.bold.Sprint("ok:"), plural(files, "file")+" checked, no problems")
		return err
	case errors > 0:
		parts = append(parts, p.err.Sprint(plural(errors, "error")))
	}
	if warnings > 0 {
		parts = append(parts, p.warn.Sprint(plural(warnings, "warning")))
	}
	_, err := fmt.Fprintf(w, "%s in %s\n", strings.Join(parts, ", "), plural(files, "file"))
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
