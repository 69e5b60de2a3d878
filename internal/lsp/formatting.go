package lsp

import (
	"strings"

	"texlint/internal/latex"
)

func (s *Server) formatting(params documentFormattingParams) ([]textEdit, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return []textEdit{}, nil
	}
	cfg := s.currentSettings()
	return formatDocumentEdits(text, cfg.pipeline, formatOptions(cfg, params.Options)), nil
}

func (s *Server) rangeFormatting(params documentRangeFormattingParams) ([]textEdit, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return []textEdit{}, nil
	}
	return formatRangeEdits(text, params.Range, formatOptions(s.currentSettings(), params.Options)), nil
}

// formatOptions prefers the configured indent; the editor's tabSize is
// used only when nothing was configured.
func formatOptions(cfg settings, editor formattingOptions) latex.FormatOptions {
	opts := cfg.format
	if opts.IndentSize <= 0 && editor.InsertSpaces && editor.TabSize > 0 {
		opts.IndentSize = editor.TabSize
	}
	return opts
}

// formatDocumentEdits runs the pipeline and returns one whole-document edit,
// or none when nothing changes.
func formatDocumentEdits(text string, pipeline latex.Pipeline, opts latex.FormatOptions) []textEdit {
	formatted := pipeline.Apply(text, opts)
	if formatted == text {
		return []textEdit{}
	}
	return []textEdit{{
		Range:   lspRange{End: documentEnd(text)},
		NewText: formatted,
	}}
}

// formatRangeEdits reformats the whole lines touched by rng. A range that
// ends at column 0 stops before that line.
func formatRangeEdits(text string, rng lspRange, opts latex.FormatOptions) []textEdit {
	lines := strings.Split(text, "\n")
	clamp := func(n int) int { return min(max(n, 0), len(lines)-1) }
	first := clamp(rng.Start.Line)
	last := clamp(max(rng.End.Line, first))
	if last > first && rng.End.Line == last && rng.End.Character == 0 {
		last--
	}
	fragment := strings.Join(lines[first:last+1], "\n")
	formatted := latex.FormatSelectionWith(fragment, opts)
	if formatted == fragment {
		return []textEdit{}
	}
	tail := lines[last]
	return []textEdit{{
		Range: lspRange{
			Start: position{Line: first},
			End:   position{Line: last, Character: utf16Column(tail, len(tail))},
		},
		NewText: formatted,
	}}
}
