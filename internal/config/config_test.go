package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"texlint/internal/diag"
	"texlint/internal/latex"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplateDecodesToDefault(t *testing.T) {
	cfg, err := Decode(strings.NewReader(Template))
	if err != nil {
		t.Fatalf("decode template: %v", err)
	}
	def := Default()
	if cfg.Format.Indent != def.Format.Indent {
		t.Fatalf("indent = %d, want %d", cfg.Format.Indent, def.Format.Indent)
	}
	if got := strings.Join(cfg.Format.Pipeline, ","); got != "format" {
		t.Fatalf("pipeline = %q", got)
	}
	if cfg.Validate.ReportUnclosedBrackets || cfg.Validate.WarningsAsErrors || cfg.Format.NFC {
		t.Fatalf("unexpected flags enabled: %+v", cfg)
	}
	if len(cfg.Files.Extensions) != 1 || cfg.Files.Extensions[0] != ".tex" {
		t.Fatalf("extensions = %v", cfg.Files.Extensions)
	}
}

func TestDecodePartialKeepsDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader("[validate]\nreport_unclosed_brackets = true\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cfg.ValidateOptions().ReportUnclosedBrackets {
		t.Fatalf("report_unclosed_brackets not applied")
	}
	if cfg.FormatOptions().IndentSize != latex.DefaultIndentSize {
		t.Fatalf("indent default lost: %d", cfg.Format.Indent)
	}
	p, err := cfg.Pipeline()
	if err != nil || p.String() != "format" {
		t.Fatalf("pipeline = %v, %v", p, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"syntax", "[validate\n", "failed to parse TOML"},
		{"unknown key", "[format]\nwidth = 80\n", "unknown keys: format.width"},
		{"unknown table", "[lint]\nx = 1\n", "unknown keys"},
		{"bad step", "[format]\npipeline = [\"format\", \"sort\"]\n", "[format].pipeline"},
		{"empty pipeline", "[format]\npipeline = []\n", "must not be empty"},
		{"bad indent", "[format]\nindent = 0\n", "[format].indent"},
		{"bad code", "[validate]\ndisable = [\"TEX9999\"]\n", "unknown code"},
		{"bad extension", "[files]\nextensions = [\"tex\"]\n", "must start with a dot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestDisabledCodes(t *testing.T) {
	cfg := Default()
	cfg.Validate.Disable = []string{"tex2001", "TEX2001", "TEX1003"}
	codes, err := cfg.DisabledCodes()
	if err != nil {
		t.Fatalf("disabled codes: %v", err)
	}
	want := []diag.Code{diag.TexUnescapedChar, diag.TexEnvUnclosed}
	if len(codes) != len(want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes[%d] = %v, want %v", i, codes[i], want[i])
		}
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "[format]\nindent = 2\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	found, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find = %q, %v, %v", found, ok, err)
	}
	if found != path {
		t.Fatalf("found %q, want %q", found, path)
	}

	loaded, err := Discover(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if loaded.Root != root || loaded.Config.Format.Indent != 2 {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestFindFromFilePath(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	file := filepath.Join(root, "resume.tex")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := Find(file); err != nil || !ok {
		t.Fatalf("Find(file) = %v, %v", ok, err)
	}
}

func TestLoadReportsPath(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[format]\nindent = \"four\"\n")
	_, err := Load(path)
	if err == nil || !strings.HasPrefix(err.Error(), path+":") {
		t.Fatalf("expected error prefixed with path, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Format.Pipeline = []string{"format", "clean"}
	cfg.Validate.Disable = []string{"TEX2001"}

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if strings.Join(back.Format.Pipeline, ",") != "format,clean" || len(back.Validate.Disable) != 1 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestStarterDocumentIsCleanAndFormatted(t *testing.T) {
	if diags := latex.Validate(StarterDocument); len(diags) != 0 {
		t.Fatalf("starter document has diagnostics: %+v", diags)
	}
	if got := latex.Format(StarterDocument); got != StarterDocument {
		t.Fatalf("starter document is not formatted:\n%s", got)
	}
}
