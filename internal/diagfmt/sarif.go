package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"unicode/utf8"

	"fortio.org/safecast"

	"texlint/internal/diag"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	ColumnKind  string            `json:"columnKind"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	ShortDescription     sarifMessage       `json:"shortDescription"`
	DefaultConfiguration sarifConfiguration `json:"defaultConfiguration"`
}

type sarifConfiguration struct {
	Level string `json:"level"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifLocation struct {
	ID               int                   `json:"id,omitempty"`
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0).
// Колонки считаются в кодовых точках Unicode, с 1.
func Sarif(w io.Writer, reports []Report, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
			Rules:   sarifRules(),
		}},
		ColumnKind: "unicodeCodePoints",
		Results:    make([]sarifResult, 0),
	}

	errorsFound := false
	for _, r := range reports {
		uri := filepath.ToSlash(r.displayPath(meta.PathMode, meta.BaseDir))
		for _, d := range r.Items() {
			if d.Severity == diag.SevError {
				errorsFound = true
			}
			res := sarifResult{
				RuleID:    d.Code.ID(),
				Level:     sarifLevel(d.Severity),
				Message:   sarifMessage{Text: d.Message},
				Locations: []sarifLocation{sarifLoc(r, uri, d.Line, d.Column)},
			}
			for i, n := range d.Notes {
				loc := sarifLoc(r, uri, n.Line, n.Column)
				loc.ID = i + 1
				loc.Message = &sarifMessage{Text: n.Msg}
				res.RelatedLocations = append(res.RelatedLocations, loc)
			}
			run.Results = append(run.Results, res)
		}
	}
	run.Invocations = []sarifInvocation{{
		Arguments:           meta.InvocationArgs,
		ExecutionSuccessful: !errorsFound,
	}}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs:    []sarifRun{run},
	})
}

func sarifRules() []sarifRule {
	codes := diag.KnownCodes()
	rules := make([]sarifRule, 0, len(codes))
	for _, c := range codes {
		rules = append(rules, sarifRule{
			ID:                   c.ID(),
			Name:                 c.Title(),
			ShortDescription:     sarifMessage{Text: c.Title()},
			DefaultConfiguration: sarifConfiguration{Level: sarifLevel(c.DefaultSeverity())},
		})
	}
	return rules
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func sarifLoc(r Report, uri string, line, col uint32) sarifLocation {
	column := col + 1
	if r.File != nil {
		text := r.File.Line(line)
		if int(col) <= len(text) {
			if n, err := safecast.Conv[uint32](utf8.RuneCountInString(text[:col])); err == nil {
				column = n + 1
			}
		}
	}
	return sarifLocation{PhysicalLocation: sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: uri},
		Region:           sarifRegion{StartLine: line + 1, StartColumn: column},
	}}
}
