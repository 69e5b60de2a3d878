// Package config loads .texlint.toml project settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"texlint/internal/diag"
	"texlint/internal/latex"
)

// FileName is the configuration file looked up from the working directory upwards.
const FileName = ".texlint.toml"

// Config mirrors the layout of .texlint.toml.
type Config struct {
	Validate ValidateConfig `toml:"validate"`
	Format   FormatConfig   `toml:"format"`
	Files    FilesConfig    `toml:"files"`
}

type ValidateConfig struct {
	ReportUnclosedBrackets bool     `toml:"report_unclosed_brackets"`
	Disable                []string `toml:"disable"`
	WarningsAsErrors       bool     `toml:"warnings_as_errors"`
}

type FormatConfig struct {
	Indent   int      `toml:"indent"`
	Pipeline []string `toml:"pipeline"`
	NFC      bool     `toml:"nfc"`
}

type FilesConfig struct {
	Extensions []string `toml:"extensions"`
}

// Default returns the settings used when no file is found.
func Default() Config {
	return Config{
		Format: FormatConfig{
			Indent:   latex.DefaultIndentSize,
			Pipeline: []string{string(latex.StepFormat)},
		},
		Files: FilesConfig{
			Extensions: []string{".tex"},
		},
	}
}

// Loaded is a configuration together with where it came from.
type Loaded struct {
	Path   string // empty when defaults are used
	Root   string // directory of Path
	Config Config
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest configuration above startDir, or the defaults.
func Discover(startDir string) (*Loaded, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Loaded{Config: Default()}, nil
	}
	return Load(path)
}

// Load reads an explicit configuration file.
func Load(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Loaded{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// Decode parses TOML on top of Default and validates the result.
// Keys that are not part of the schema are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if meta.IsDefined("format", "pipeline") && len(cfg.Format.Pipeline) == 0 {
		return Config{}, errors.New("[format].pipeline must not be empty")
	}
	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Check validates values that TOML typing cannot express.
func (c Config) Check() error {
	if err := latex.CheckIndentSize(c.Format.Indent); err != nil {
		return fmt.Errorf("[format].%w", err)
	}
	if _, err := latex.NewPipeline(c.Format.Pipeline); err != nil {
		return fmt.Errorf("[format].pipeline: %w", err)
	}
	if _, err := c.DisabledCodes(); err != nil {
		return err
	}
	for _, ext := range c.Files.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("[files].extensions: %q must start with a dot", ext)
		}
	}
	return nil
}

// DisabledCodes resolves [validate].disable.
func (c Config) DisabledCodes() ([]diag.Code, error) {
	codes := make([]diag.Code, 0, len(c.Validate.Disable))
	for _, id := range c.Validate.Disable {
		code, ok := diag.ParseCode(id)
		if !ok {
			return nil, fmt.Errorf("[validate].disable: unknown code %q", id)
		}
		if !slices.Contains(codes, code) {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// ValidateOptions maps the [validate] table onto the validator options.
func (c Config) ValidateOptions() latex.Options {
	return latex.Options{ReportUnclosedBrackets: c.Validate.ReportUnclosedBrackets}
}

// FormatOptions maps the [format] table onto the formatter options.
func (c Config) FormatOptions() latex.FormatOptions {
	return latex.FormatOptions{IndentSize: c.Format.Indent}
}

// Pipeline returns the configured transform order. Check has already
// validated it, so only a hand-built Config can fail here.
func (c Config) Pipeline() (latex.Pipeline, error) {
	return latex.NewPipeline(c.Format.Pipeline)
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(c)
}
