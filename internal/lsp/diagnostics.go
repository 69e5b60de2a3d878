package lsp

import (
	"time"

	"texlint/internal/diag"
	"texlint/internal/diagfmt"
	"texlint/internal/driver"
	"texlint/internal/source"
	"texlint/internal/trace"
)

// scheduleDiagnostics (re)arms the debounce timer. Edits arriving within
// the debounce window collapse into one run.
func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.runDiagnostics(gen) })
}

// runDiagnostics validates every document changed since the last run.
// A run armed before the latest schedule does nothing; the newer timer
// picks up the same dirty set.
func (s *Server) runDiagnostics(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	pending := s.docs.takeDirty()
	cfg := s.settings
	ctx := s.ctx
	s.mu.Unlock()
	if len(pending) == 0 {
		return
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "lsp-diagnostics", "")
	span.AttrInt("documents", len(pending))
	defer span.End("")

	for _, snap := range pending {
		path := uriToPath(snap.uri)
		_, fspan := trace.Start(ctx, trace.ScopeFile, "publish", path)
		list := s.diagnose(snap.uri, path, snap.text, cfg)
		fspan.AttrInt("diagnostics", len(list))

		s.mu.Lock()
		live := s.docs.current(snap, len(list) > 0)
		s.mu.Unlock()
		if !live {
			// документ уже изменился, новый прогон опубликует свежие данные
			fspan.End("stale")
			continue
		}
		version := snap.version
		s.publish(snap.uri, &version, list)
		elapsed := fspan.End("published")
		if cfg.trace {
			s.logf("publish: uri=%s version=%d diagnostics=%d elapsed=%s", snap.uri, snap.version, len(list), elapsed)
		}
	}
}

// diagnose validates text and converts findings to LSP diagnostics.
func (s *Server) diagnose(uri, path, text string, cfg settings) []lspDiagnostic {
	res := driver.CheckSource(path, []byte(text), driver.CheckOptions{
		MaxDiagnostics: s.maxDiagnostics,
		Validate:       cfg.validate,
		Disabled:       cfg.disabled,
	})
	if res.Bag == nil {
		return nil
	}
	items := res.Bag.Items()
	out := make([]lspDiagnostic, 0, len(items))
	for _, d := range items {
		out = append(out, toLSPDiagnostic(uri, res.File, d))
	}
	return out
}

func toLSPDiagnostic(uri string, file *source.File, d diag.Diagnostic) lspDiagnostic {
	ld := lspDiagnostic{
		Range:    diagnosticRange(file, d.Line, d.Column),
		Severity: lspSeverity(d.Severity),
		Code:     d.Code.ID(),
		Source:   "texlint",
		Message:  d.Message,
	}
	for _, n := range d.Notes {
		ld.RelatedInformation = append(ld.RelatedInformation, diagnosticRelatedInformation{
			Location: location{URI: uri, Range: diagnosticRange(file, n.Line, n.Column)},
			Message:  n.Msg,
		})
	}
	return ld
}

// diagnosticRange covers the construct at (line, col) in UTF-16 units.
func diagnosticRange(file *source.File, line, col uint32) lspRange {
	var text string
	if file != nil {
		text = file.Line(line)
	}
	from := min(int(col), len(text))
	to := from + diagfmt.TokenLen(text, from)
	return lspRange{
		Start: position{Line: int(line), Character: utf16Column(text, from)},
		End:   position{Line: int(line), Character: utf16Column(text, to)},
	}
}

var lspSeverities = map[diag.Severity]int{
	diag.SevError:   severityError,
	diag.SevWarning: severityWarning,
	diag.SevInfo:    severityInformation,
}

func lspSeverity(sev diag.Severity) int {
	if v, ok := lspSeverities[sev]; ok {
		return v
	}
	return severityInformation
}
