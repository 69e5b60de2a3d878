package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"texlint/internal/diag"
)

func TestSarif(t *testing.T) {
	r := testReport("cv/résumé.tex", "Café 5%\n\\end{x}\n",
		diag.NewWarning(diag.TexUnescapedChar, 0, uint32(len("Café 5")), "Unescaped special character '%'. Use \\% instead"),
		diag.NewError(diag.TexEndWithoutBegin, 1, 0, "\\end{x} without matching \\begin{}"))

	var buf bytes.Buffer
	err := Sarif(&buf, []Report{r}, SarifRunMeta{ToolName: "texlint", ToolVersion: "1.0.0", InvocationArgs: []string{"check"}})
	if err != nil {
		t.Fatal(err)
	}

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID                   string `json:"id"`
						DefaultConfiguration struct {
							Level string `json:"level"`
						} `json:"defaultConfiguration"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Invocations []struct {
				ExecutionSuccessful bool `json:"executionSuccessful"`
			} `json:"invocations"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v\n%s", err, buf.String())
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log header: %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "texlint" || len(run.Tool.Driver.Rules) != len(diag.KnownCodes()) {
		t.Fatalf("driver: %+v", run.Tool.Driver)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Fatal("errors present, execution must not be successful")
	}
	if len(run.Results) != 2 {
		t.Fatalf("results: %+v", run.Results)
	}
	warn := run.Results[0]
	if warn.RuleID != "TEX2001" || warn.Level != "warning" {
		t.Fatalf("first result %+v", warn)
	}
	loc := warn.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "cv/résumé.tex" || loc.Region.StartLine != 1 || loc.Region.StartColumn != 7 {
		t.Fatalf("location %+v", loc)
	}
	if run.Results[1].Level != "error" {
		t.Fatalf("second result %+v", run.Results[1])
	}

	for _, rule := range run.Tool.Driver.Rules {
		if rule.ID == "TEX2001" && rule.DefaultConfiguration.Level != "warning" {
			t.Fatalf("TEX2001 default level %q", rule.DefaultConfiguration.Level)
		}
	}
}
