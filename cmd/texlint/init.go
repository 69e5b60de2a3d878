package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"texlint/internal/config"
)

const starterDocumentName = "resume.tex"

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create " + config.FileName + " and a starter document",
		Long: `Write a default ` + config.FileName + ` into [path] (the current directory
by default, created when missing) together with a starter ` + starterDocumentName + `.
An existing config is an error unless --force is given; an existing
document is never touched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("force", false, "overwrite an existing "+config.FileName)
	cmd.Flags().Bool("bare", false, "write only "+config.FileName)
	return cmd
}

// scaffold is one file written by init.
type scaffold struct {
	name     string
	content  string
	required bool // an existing file fails the command instead of being skipped
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	bare, _ := cmd.Flags().GetBool("bare")

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	files := []scaffold{{name: config.FileName, content: config.Template, required: true}}
	if !bare {
		files = append(files, scaffold{name: starterDocumentName, content: config.StarterDocument})
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
		if f.required && force {
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}
		written, err := writeScaffold(path, f.content, flags)
		switch {
		case errors.Is(err, fs.ErrExist) && f.required:
			return fmt.Errorf("already initialized: %s exists (use --force to overwrite)", path)
		case errors.Is(err, fs.ErrExist):
			continue
		case err != nil:
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if written && !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		}
	}
	return nil
}

func writeScaffold(path, content string, flags int) (bool, error) {
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return false, err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return false, err
	}
	return true, f.Close()
}
