package latex

import (
	"fmt"
	"regexp"

	"texlint/internal/diag"
)

// specialChars are checked in this order; each class is scanned left to right.
const specialChars = "&%$#_"

// alignRe matches the markers that make & a column separator.
var alignRe = regexp.MustCompile(`\\(begin|end)\{(tabular|array|align)\}`)

// escapedMask marks the bytes preceded by an unescaped backslash.
// In `\\%` the second backslash is escaped, so the % is not.
func escapedMask(line string) []bool {
	mask := make([]bool, len(line))
	pending := false
	for i := 0; i < len(line); i++ {
		mask[i] = pending
		pending = line[i] == '\\' && !pending
	}
	return mask
}

type alignMarker struct {
	at    int
	begin bool
}

func (v *validator) checkEscapes(n int, line string) {
	mask := escapedMask(line)

	var markers []alignMarker
	for _, m := range alignRe.FindAllStringSubmatchIndex(line, -1) {
		markers = append(markers, alignMarker{at: m[0], begin: line[m[2]:m[3]] == "begin"})
	}
	inAlign := v.alignOpen

	for k := 0; k < len(specialChars); k++ {
		c := specialChars[k]
		dollars := 0
		mi, open := 0, inAlign
		for i := 0; i < len(line); i++ {
			if line[i] != c || mask[i] {
				continue
			}
			switch c {
			case '&':
				for mi < len(markers) && markers[mi].at < i {
					open = markers[mi].begin
					mi++
				}
				if open {
					continue
				}
			case '$':
				dollars++
				if dollars%2 == 0 {
					continue
				}
			}
			v.reporter.Report(diag.NewWarning(diag.TexUnescapedChar, pos(n), pos(i),
				fmt.Sprintf("Unescaped special character '%c'. Use \\%c instead", c, c)))
		}
	}

	if len(markers) > 0 {
		v.alignOpen = markers[len(markers)-1].begin
	}
}
