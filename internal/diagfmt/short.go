package diagfmt

import (
	"io"

	"texlint/internal/diag"
)

// Short prints one line per diagnostic: "<sev> <CODE> <path>:<line>:<col> <message>".
func Short(w io.Writer, reports []Report, mode PathMode, baseDir string, notes bool) error {
	for _, r := range reports {
		out := diag.FormatShortDiagnostics(r.displayPath(mode, baseDir), r.Items(), notes)
		if out == "" {
			continue
		}
		if _, err := io.WriteString(w, out+"\n"); err != nil {
			return err
		}
	}
	return nil
}
