package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"texlint/internal/config"
	"texlint/internal/diagfmt"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// isolated returns a directory carrying its own config so that discovery
// never reaches a file outside the test.
func isolated(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, config.FileName, cfg)
	return dir
}

func TestCheckJSONReportsErrors(t *testing.T) {
	dir := isolated(t, "")
	writeFile(t, dir, "good.tex", "\\begin{a}\n\\end{a}\n")
	writeFile(t, dir, "bad.tex", "\\begin{a}\n50% off\n")

	out, _, err := execute(t, "", "check", "--format", "json", "--ui", "off", dir)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	var payload diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(payload.Files) != 2 || payload.ErrorCount != 1 || payload.WarningCount != 1 {
		t.Fatalf("unexpected totals: files=%d errors=%d warnings=%d", len(payload.Files), payload.ErrorCount, payload.WarningCount)
	}
}

func TestCheckCleanPretty(t *testing.T) {
	dir := isolated(t, "")
	path := writeFile(t, dir, "cv.tex", "\\section{Skills}\n")

	out, _, err := execute(t, "", "check", path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if strings.TrimSpace(out) != "ok: 1 file checked, no problems" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCheckDisableAndWarningsAsErrors(t *testing.T) {
	dir := isolated(t, "[validate]\nwarnings_as_errors = true\n")
	path := writeFile(t, dir, "cv.tex", "Smith & Sons\n")

	if _, _, err := execute(t, "", "check", path); !errors.Is(err, errReported) {
		t.Fatalf("warning must fail the run with warnings_as_errors, got %v", err)
	}
	if _, _, err := execute(t, "", "check", "--disable", "TEX2001", path); err != nil {
		t.Fatalf("disabled code must not fail the run: %v", err)
	}
	if _, _, err := execute(t, "", "check", "--warnings-as-errors=false", path); err != nil {
		t.Fatalf("flag must override config: %v", err)
	}
}

func TestCheckStdinShort(t *testing.T) {
	out, _, err := execute(t, "\\end{x}\n", "check", "--format", "short", "-")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	if !strings.Contains(out, "TEX1001") || !strings.Contains(out, "<stdin>") {
		t.Fatalf("unexpected short output %q", out)
	}
}

func TestCheckReportUnclosedBracketsFlag(t *testing.T) {
	dir := isolated(t, "")
	path := writeFile(t, dir, "cv.tex", "\\textbf{oops\n")
	if _, _, err := execute(t, "", "check", path); err != nil {
		t.Fatalf("unclosed bracket is not reported by default: %v", err)
	}
	out, _, err := execute(t, "", "check", "--format", "short", "--report-unclosed-brackets", path)
	if !errors.Is(err, errReported) || !strings.Contains(out, "TEX3003") {
		t.Fatalf("expected TEX3003, got %v %q", err, out)
	}
}

func TestCheckRejectsUnknownFormat(t *testing.T) {
	dir := isolated(t, "")
	_, _, err := execute(t, "", "check", "--format", "xml", dir)
	if err == nil || errors.Is(err, errReported) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestFmtCheckAndWrite(t *testing.T) {
	dir := isolated(t, "")
	path := writeFile(t, dir, "cv.tex", "\\begin{itemize}\n\\item a\n\\end{itemize}\n")

	out, _, err := execute(t, "", "fmt", "--check", path)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Fatalf("expected the path to be listed, got %q", out)
	}

	if _, _, err := execute(t, "", "fmt", path); err != nil {
		t.Fatalf("fmt: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "\\begin{itemize}\n    \\item a\n\\end{itemize}\n" {
		t.Fatalf("unexpected formatted file %q", got)
	}
	if _, _, err := execute(t, "", "fmt", "--check", path); err != nil {
		t.Fatalf("formatted file must pass --check: %v", err)
	}
}

func TestFmtStdinWithPipeline(t *testing.T) {
	isolated(t, "")
	out, _, err := execute(t, "\\begin{tabular}{ll}\na&b   \n\n\n\n\\end{tabular}", "fmt", "--pipeline", "clean,format,align", "--indent", "2", "-")
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	want := "\\begin{tabular}{ll}\na  &  b\n\n\\end{tabular}"
	if out != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", out, want)
	}
}

func TestFmtStdinKeepsBOMAndCRLF(t *testing.T) {
	isolated(t, "")
	in := "\xEF\xBB\xBF\\begin{document}\r\nx\r\n\\end{document}\r\n"
	want := "\xEF\xBB\xBF\\begin{document}\r\n    x\r\n\\end{document}\r\n"
	out, _, err := execute(t, in, "fmt", "-")
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if out != want {
		t.Fatalf("got %q\nwant %q", out, want)
	}

	if _, _, err := execute(t, want, "fmt", "--check", "-"); err != nil {
		t.Fatalf("formatted CRLF input reported as unformatted: %v", err)
	}
	if _, _, err := execute(t, in, "fmt", "--check", "-"); !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
}

func TestFmtRejectsBadPipeline(t *testing.T) {
	_, _, err := execute(t, "x", "fmt", "--pipeline", "format,sort", "-")
	if err == nil || !strings.Contains(err.Error(), "--pipeline") {
		t.Fatalf("expected pipeline error, got %v", err)
	}
}

func TestInitAndConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cv")
	out, _, err := execute(t, "", "init", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, config.FileName) || !strings.Contains(out, starterDocumentName) {
		t.Fatalf("unexpected init output %q", out)
	}
	if _, _, err := execute(t, "", "init", dir); err == nil {
		t.Fatal("second init must fail")
	}
	doc := filepath.Join(dir, starterDocumentName)
	if err := os.WriteFile(doc, []byte("mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err = execute(t, "", "init", "--force", dir)
	if err != nil {
		t.Fatalf("init --force: %v", err)
	}
	if strings.Contains(out, starterDocumentName) {
		t.Fatalf("an existing document must be kept, got %q", out)
	}
	if data, _ := os.ReadFile(doc); string(data) != "mine\n" {
		t.Fatalf("document was overwritten: %q", data)
	}
	if err := os.WriteFile(doc, []byte(config.StarterDocument), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, "", "check", filepath.Join(dir, starterDocumentName)); err != nil {
		t.Fatalf("starter document must be clean: %v", err)
	}
	if _, _, err := execute(t, "", "fmt", "--check", filepath.Join(dir, starterDocumentName)); err != nil {
		t.Fatalf("starter document must be formatted: %v", err)
	}

	out, _, err = execute(t, "", "config", dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.HasPrefix(out, "# loaded from "+filepath.Join(dir, config.FileName)) || !strings.Contains(out, "indent = 4") {
		t.Fatalf("unexpected config output %q", out)
	}
}

func TestConfigFlagRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "custom.toml", "[format]\nwidth = 80\n")
	_, _, err := execute(t, "", "--config", cfg, "check", dir)
	if err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Fatalf("expected unknown keys error, got %v", err)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "", "version", "--format", "json", "--full")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "texlint" || payload.Version == "" || payload.GitCommit != "unknown" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestMemProfileWrittenEvenOnFailure(t *testing.T) {
	dir := isolated(t, "")
	bad := writeFile(t, dir, "bad.tex", "\\end{a}\n")
	profile := filepath.Join(dir, "mem.pprof")

	_, _, err := execute(t, "", "--mem-profile", profile, "check", "--ui", "off", bad)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	info, err := os.Stat(profile)
	if err != nil {
		t.Fatalf("heap profile not written: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("heap profile is empty")
	}
}
