package lsp

import (
	"cmp"
	"slices"

	"texlint/internal/latex"
)

func (s *Server) foldingRange(params foldingRangeParams) ([]foldingRange, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return []foldingRange{}, nil
	}
	return buildFoldingRanges(text), nil
}

// buildFoldingRanges folds every matched \begin/\end pair with at least
// one line between them. The \end line stays visible.
func buildFoldingRanges(text string) []foldingRange {
	var ranges []foldingRange
	for _, env := range latex.Environments(text) {
		last := env.EndLine - 1
		if last <= env.StartLine {
			continue
		}
		ranges = append(ranges, foldingRange{StartLine: env.StartLine, EndLine: last, Kind: "region"})
	}
	slices.SortFunc(ranges, func(a, b foldingRange) int {
		return cmp.Or(cmp.Compare(a.StartLine, b.StartLine), cmp.Compare(a.EndLine, b.EndLine))
	})
	if ranges == nil {
		ranges = []foldingRange{}
	}
	return ranges
}
