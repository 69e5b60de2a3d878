package diagfmt

import (
	"path/filepath"

	"texlint/internal/diag"
	"texlint/internal/source"
)

// Report groups the diagnostics of one document for rendering.
type Report struct {
	Path string       // path as collected
	File *source.File // loaded file; nil when loading failed
	Bag  *diag.Bag
	Err  error // load error, if any
}

// Items returns the diagnostics of the report in bag order.
func (r Report) Items() []diag.Diagnostic {
	if r.Bag == nil {
		return nil
	}
	return r.Bag.Items()
}

// dropped is the number of diagnostics the bag rejected.
func (r Report) dropped() int {
	if r.Bag == nil {
		return 0
	}
	return r.Bag.Dropped()
}

// displayPath formats the report path according to mode.
func (r Report) displayPath(mode PathMode, baseDir string) string {
	path := r.Path
	if r.File != nil {
		path = r.File.Path
	}
	var (
		out string
		err error
	)
	switch mode {
	case PathModeAbsolute:
		out, err = source.AbsolutePath(path)
	case PathModeRelative:
		out, err = source.RelativePath(path, baseDir)
	case PathModeBasename:
		out = filepath.Base(path)
	default:
		out = source.ShortPath(path)
	}
	if err != nil {
		return path
	}
	return out
}

// lineText returns a 0-based source line, or "" without a file.
func (r Report) lineText(line uint32) string {
	if r.File == nil {
		return ""
	}
	return r.File.Line(line)
}

// Totals counts errors and warnings across reports.
func Totals(reports []Report) (errors, warnings int) {
	for _, r := range reports {
		if r.Bag == nil {
			continue
		}
		errors += r.Bag.Count(diag.SevError)
		warnings += r.Bag.Count(diag.SevWarning)
	}
	return errors, warnings
}
