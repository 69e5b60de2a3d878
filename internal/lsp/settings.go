package lsp

import (
	"encoding/json"

	"texlint/internal/config"
	"texlint/internal/diag"
	"texlint/internal/latex"
)

type settings struct {
	validate latex.Options
	disabled []diag.Code
	pipeline latex.Pipeline
	format   latex.FormatOptions
	trace    bool
}

// settingsFromConfig converts a .texlint.toml into server settings.
func settingsFromConfig(cfg config.Config) (settings, error) {
	pipeline, err := cfg.Pipeline()
	if err != nil {
		return settings{}, err
	}
	disabled, err := cfg.DisabledCodes()
	if err != nil {
		return settings{}, err
	}
	return settings{
		validate: cfg.ValidateOptions(),
		disabled: disabled,
		pipeline: pipeline,
		format:   cfg.FormatOptions(),
	}, nil
}

// loadWorkspaceConfig replaces the settings with the config file found
// from root. Without a file the current settings stay.
func (s *Server) loadWorkspaceConfig(root string) {
	loaded, err := config.Discover(root)
	if err != nil {
		s.logf("workspace config: %v", err)
		return
	}
	if loaded.Path == "" {
		return
	}
	next, err := settingsFromConfig(loaded.Config)
	if err != nil {
		s.logf("%s: %v", loaded.Path, err)
		return
	}
	s.mu.Lock()
	next.trace = s.settings.trace
	s.settings = next
	s.mu.Unlock()
	s.logf("using %s", loaded.Path)
}

func (s *Server) didChangeConfiguration(params didChangeConfigurationParams) {
	if !s.applySettings(params.Settings) {
		return
	}
	s.mu.Lock()
	s.docs.touchAll()
	s.mu.Unlock()
	s.scheduleDiagnostics()
}

// applySettings merges the "texlint" section into the current settings.
// Invalid values are logged and skipped; the rest still applies.
func (s *Server) applySettings(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var in lspSettings
	if err := json.Unmarshal(raw, &in); err != nil {
		s.logf("invalid settings: %v", err)
		return false
	}
	cfg := in.Texlint

	var pipeline latex.Pipeline
	if len(cfg.Pipeline) > 0 {
		p, err := latex.NewPipeline(cfg.Pipeline)
		if err != nil {
			s.logf("texlint.pipeline: %v", err)
		} else {
			pipeline = p
		}
	}
	var disabled []diag.Code
	if cfg.Disable != nil {
		disabled = make([]diag.Code, 0, len(cfg.Disable))
		for _, id := range cfg.Disable {
			code, ok := diag.ParseCode(id)
			if !ok {
				s.logf("texlint.disable: unknown code %q", id)
				continue
			}
			disabled = append(disabled, code)
		}
	}

	indent := 0
	if cfg.Indent != nil {
		if err := latex.CheckIndentSize(*cfg.Indent); err != nil {
			s.logf("texlint.%v", err)
		} else {
			indent = *cfg.Indent
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.ReportUnclosedBrackets != nil {
		s.settings.validate.ReportUnclosedBrackets = *cfg.ReportUnclosedBrackets
	}
	if pipeline != nil {
		s.settings.pipeline = pipeline
	}
	if indent > 0 {
		s.settings.format.IndentSize = indent
	}
	if disabled != nil {
		s.settings.disabled = disabled
	}
	if cfg.Trace != nil {
		s.settings.trace = *cfg.Trace
	}
	return true
}
