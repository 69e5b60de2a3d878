package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"texlint/internal/lsp"
	"texlint/internal/version"
)

func newLSPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the texlint language server over stdio",
		RunE:  runLSP,
	}
	cmd.Flags().Duration("debounce", 0, "delay before re-validating after an edit (default 200ms)")
	return cmd
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return err
	}
	loaded, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	pipeline, err := cfg.Pipeline()
	if err != nil {
		return err
	}
	disabled, err := cfg.DisabledCodes()
	if err != nil {
		return err
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:        debounce,
		MaxDiagnostics:  maxDiagnostics,
		Validate:        cfg.ValidateOptions(),
		Disabled:        disabled,
		Pipeline:        pipeline,
		Format:          cfg.FormatOptions(),
		// --config pins the file; otherwise the editor's workspace decides
		WorkspaceConfig: explicit == "",
		Version:         version.Version,
		Log:             cmd.ErrOrStderr(),
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
