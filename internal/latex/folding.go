package latex

import "strings"

// EnvironmentRange is a matched \begin{Name} ... \end{Name} pair.
type EnvironmentRange struct {
	Name      string
	StartLine int
	EndLine   int
}

// Environments returns the matched environment pairs of text, ordered by
// the line of their \end. Unbalanced markers are skipped using the same
// stack discipline as the validator.
func Environments(text string) []EnvironmentRange {
	var (
		stack envStack
		out   []EnvironmentRange
	)
	for n, line := range strings.Split(text, "\n") {
		for _, m := range beginRe.FindAllStringSubmatch(line, -1) {
			stack.push(EnvironmentFrame{Name: m[1], Line: n})
		}
		for _, m := range endRe.FindAllStringSubmatch(line, -1) {
			top, ok := stack.pop()
			if ok && top.Name == m[1] {
				out = append(out, EnvironmentRange{Name: top.Name, StartLine: top.Line, EndLine: n})
			}
		}
	}
	return out
}
