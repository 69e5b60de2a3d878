package diag

// Reporter receives diagnostics from a check as they are found.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops everything.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})
