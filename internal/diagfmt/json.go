package diagfmt

import (
	"encoding/json"
	"io"

	"texlint/internal/diag"
)

// LocationJSON представляет местоположение в файле для JSON.
// Line и Column считаются с 0, Column это байтовое смещение в строке.
type LocationJSON struct {
	Line      uint32  `json:"line"`
	Column    uint32  `json:"column"`
	StartByte *uint32 `json:"start_byte,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// FileJSON holds the diagnostics of one document.
type FileJSON struct {
	Path        string           `json:"path"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	// Omitted counts findings beyond --max-diagnostics.
	Omitted int `json:"omitted,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Files        []FileJSON `json:"files"`
	ErrorCount   int        `json:"error_count"`
	WarningCount int        `json:"warning_count"`
}

func makeLocation(r Report, line, col uint32) LocationJSON {
	loc := LocationJSON{Line: line, Column: col}
	if r.File == nil {
		return loc
	}
	if off, ok := r.File.Offset(line, col); ok {
		loc.StartByte = &off
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(reports []Report, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Files: make([]FileJSON, 0, len(reports))}
	for _, r := range reports {
		items := r.Items()
		limit := len(items)
		if opts.Max > 0 && opts.Max < limit {
			limit = opts.Max
		}

		file := FileJSON{
			Path:        r.displayPath(opts.PathMode, opts.BaseDir),
			Diagnostics: make([]DiagnosticJSON, 0, limit),
		}
		if r.Err != nil {
			file.Error = r.Err.Error()
		}
		file.Omitted = r.dropped() + len(items) - limit

		for _, d := range items[:limit] {
			dj := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Title:    d.Code.Title(),
				Message:  d.Message,
				Location: makeLocation(r, d.Line, d.Column),
			}
			if opts.IncludeNotes && len(d.Notes) > 0 {
				dj.Notes = make([]NoteJSON, len(d.Notes))
				for j, n := range d.Notes {
					dj.Notes[j] = NoteJSON{Message: n.Msg, Location: makeLocation(r, n.Line, n.Column)}
				}
			}
			switch d.Severity {
			case diag.SevError:
				out.ErrorCount++
			case diag.SevWarning:
				out.WarningCount++
			}
			file.Diagnostics = append(file.Diagnostics, dj)
		}
		out.Files = append(out.Files, file)
	}
	return out
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, reports []Report, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(reports, opts))
}
