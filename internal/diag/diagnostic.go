package diag

// Note points at a secondary location that explains the primary finding.
type Note struct {
	Line   uint32
	Column uint32
	Msg    string
}

// Diagnostic is a single finding. Line and Column are 0-based; Column is a
// byte offset within the line.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Line     uint32
	Column   uint32
	Notes    []Note
}

func New(sev Severity, code Code, line, col uint32, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Line:     line,
		Column:   col,
	}
}

func NewError(code Code, line, col uint32, msg string) Diagnostic {
	return New(SevError, code, line, col, msg)
}

func NewWarning(code Code, line, col uint32, msg string) Diagnostic {
	return New(SevWarning, code, line, col, msg)
}

func (d Diagnostic) WithNote(line, col uint32, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Line: line, Column: col, Msg: msg})
	return d
}

// Structural reports whether the diagnostic describes environment or bracket
// structure rather than style.
func (d Diagnostic) Structural() bool {
	return d.Code.Category() == CategoryEnvironment || d.Code.Category() == CategoryBracket
}
