package latex

import (
	"fmt"
	"strings"

	"texlint/internal/diag"
)

// Options tunes ValidateWith. The zero value matches Validate.
type Options struct {
	// ReportUnclosedBrackets adds a TEX3003 error for every bracket still
	// open at the end of the document.
	ReportUnclosedBrackets bool
}

// Validate checks text and returns every finding in emission order.
// The result is never nil.
func Validate(text string) []diag.Diagnostic {
	out := []diag.Diagnostic{}
	ValidateWith(text, Options{}, diag.ReporterFunc(func(d diag.Diagnostic) {
		out = append(out, d)
	}))
	return out
}

// ValidateWith runs the validator with opts and streams findings into r.
func ValidateWith(text string, opts Options, r diag.Reporter) {
	if r == nil {
		r = diag.Discard
	}
	v := validator{opts: opts, reporter: r}
	for i, line := range strings.Split(text, "\n") {
		v.line(i, line)
	}
	v.finish()
}

type validator struct {
	opts     Options
	reporter diag.Reporter

	envs     envStack
	brackets bracketStack
	// alignOpen is the state of the nearest tabular/array/align marker seen
	// on previous lines: true when it was a \begin.
	alignOpen bool
}

func (v *validator) line(n int, line string) {
	v.checkEnvironments(n, line)
	v.checkEscapes(n, line)
	v.checkBrackets(n, line)
}

func (v *validator) checkEnvironments(n int, line string) {
	for _, m := range beginRe.FindAllStringSubmatch(line, -1) {
		v.envs.push(EnvironmentFrame{Name: m[1], Line: n})
	}
	for _, m := range endRe.FindAllStringSubmatchIndex(line, -1) {
		name := line[m[2]:m[3]]
		col := pos(m[0])
		top, ok := v.envs.pop()
		switch {
		case !ok:
			v.reporter.Report(diag.NewError(diag.TexEndWithoutBegin, pos(n), col,
				fmt.Sprintf("\\end{%s} without matching \\begin{}", name)))
		case top.Name != name:
			v.reporter.Report(diag.NewError(diag.TexEnvMismatch, pos(n), col,
				fmt.Sprintf("Expected \\end{%s}, found \\end{%s}", top.Name, name)).
				WithNote(pos(top.Line), 0, fmt.Sprintf("\\begin{%s} opened here", top.Name)))
		}
	}
}

func (v *validator) checkBrackets(n int, line string) {
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch c {
		case '{', '[', '(':
			v.brackets.push(BracketFrame{Kind: c, Line: n, Column: i})
		case '}', ']', ')':
			top, ok := v.brackets.pop()
			switch {
			case !ok:
				v.reporter.Report(diag.NewError(diag.TexUnexpectedBracket, pos(n), pos(i),
					fmt.Sprintf("Unexpected closing bracket '%c'", c)))
			case closerFor(top.Kind) != c:
				v.reporter.Report(diag.NewError(diag.TexBracketMismatch, pos(n), pos(i),
					fmt.Sprintf("Mismatched brackets: '%c' opened at line %d, but '%c' found", top.Kind, top.Line+1, c)).
					WithNote(pos(top.Line), pos(top.Column), fmt.Sprintf("'%c' opened here", top.Kind)))
			}
		}
	}
}

func (v *validator) finish() {
	for _, f := range v.envs.frames {
		v.reporter.Report(diag.NewError(diag.TexEnvUnclosed, pos(f.Line), 0,
			fmt.Sprintf("Unclosed environment '%s'. Missing \\end{%s}", f.Name, f.Name)))
	}
	if !v.opts.ReportUnclosedBrackets {
		return
	}
	for _, f := range v.brackets.frames {
		v.reporter.Report(diag.NewError(diag.TexUnclosedBracket, pos(f.Line), pos(f.Column),
			fmt.Sprintf("Unclosed bracket '%c'", f.Kind)))
	}
}
