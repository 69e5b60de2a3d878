package lsp

import (
	"strings"
	"testing"

	"texlint/internal/latex"
)

func TestFoldingRangesEnvironments(t *testing.T) {
	src := strings.Join([]string{
		"\\begin{document}",
		"\\begin{itemize}",
		"\\item a",
		"\\end{itemize}",
		"\\begin{center}",
		"\\end{center}",
		"\\end{document}",
	}, "\n")
	ranges := buildFoldingRanges(src)
	if len(ranges) != 2 {
		t.Fatalf("expected 2 folding ranges, got %+v", ranges)
	}
	if !hasFoldingRange(ranges, 0, 5) {
		t.Fatalf("missing folding range for document: %+v", ranges)
	}
	if !hasFoldingRange(ranges, 1, 2) {
		t.Fatalf("missing folding range for itemize: %+v", ranges)
	}
}

func TestFoldingRangesSkipUnbalanced(t *testing.T) {
	src := "\\begin{a}\nx\n\\end{b}\n\\begin{c}\ny\n"
	if ranges := buildFoldingRanges(src); len(ranges) != 0 {
		t.Fatalf("expected no ranges, got %+v", ranges)
	}
}

func TestFormatRangeEdits(t *testing.T) {
	text := "intro\n\\begin{itemize}\n\\item a\n\\end{itemize}\noutro"
	edits := formatRangeEdits(text, lspRange{
		Start: position{Line: 1, Character: 3},
		End:   position{Line: 4, Character: 0},
	}, latex.DefaultFormatOptions())
	if len(edits) != 1 {
		t.Fatalf("expected one edit, got %+v", edits)
	}
	edit := edits[0]
	if edit.NewText != "\\begin{itemize}\n    \\item a\n\\end{itemize}" {
		t.Fatalf("unexpected text %q", edit.NewText)
	}
	if edit.Range.Start != (position{Line: 1}) || edit.Range.End != (position{Line: 3, Character: len("\\end{itemize}")}) {
		t.Fatalf("unexpected range %+v", edit.Range)
	}

	if edits := formatRangeEdits(text, lspRange{Start: position{Line: 0}, End: position{Line: 0, Character: 5}}, latex.DefaultFormatOptions()); len(edits) != 0 {
		t.Fatalf("formatted line must produce no edit, got %+v", edits)
	}
}

func hasFoldingRange(ranges []foldingRange, start, end int) bool {
	for _, rng := range ranges {
		if rng.StartLine == start && rng.EndLine == end {
			return true
		}
	}
	return false
}
