package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// line is one rendered row of short/golden output.
type line struct {
	sev     string
	code    string
	row     uint32 // 1-based
	col     uint32 // 1-based
	message string
}

func (l line) String(path string) string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, path, l.row, l.col, l.message)
}

// FormatGoldenDiagnostics renders diagnostics one per line, sorted by
// position so that golden files do not depend on check order. Notes, when
// included, follow their diagnostic as "note" rows.
func FormatGoldenDiagnostics(path string, diags []Diagnostic, includeNotes bool) string {
	rows := flatten(diags, includeNotes)
	slices.SortStableFunc(rows, func(a, b line) int {
		return cmp.Or(
			cmp.Compare(a.row, b.row),
			cmp.Compare(a.col, b.col),
			cmp.Compare(a.sev, b.sev),
			cmp.Compare(a.code, b.code),
			cmp.Compare(a.message, b.message),
		)
	})
	return join(path, rows)
}

// FormatShortDiagnostics renders diagnostics one per line in emission
// order. Lines and columns are 1-based.
func FormatShortDiagnostics(path string, diags []Diagnostic, includeNotes bool) string {
	return join(path, flatten(diags, includeNotes))
}

func flatten(diags []Diagnostic, includeNotes bool) []line {
	rows := make([]line, 0, len(diags))
	for _, d := range diags {
		id := d.Code.ID()
		rows = append(rows, line{d.Severity.Label(), id, d.Line + 1, d.Column + 1, oneLine(d.Message)})
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			rows = append(rows, line{"note", id, n.Line + 1, n.Column + 1, oneLine(n.Msg)})
		}
	}
	return rows
}

func join(path string, rows []line) string {
	path = filepath.ToSlash(path)
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String(path)
	}
	return strings.Join(out, "\n")
}

// oneLine folds any line breaks in msg into spaces.
func oneLine(msg string) string {
	return strings.TrimSpace(strings.Join(strings.FieldsFunc(msg, func(r rune) bool {
		return r == '\n' || r == '\r'
	}), " "))
}
