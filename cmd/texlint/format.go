package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"texlint/internal/config"
	"texlint/internal/driver"
	"texlint/internal/latex"
	"texlint/internal/observ"
	"texlint/internal/source"
)

func newFmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [flags] <path> [path...]",
		Short: "Format LaTeX files",
		Long: `Re-indent LaTeX files by environment nesting. Additional transforms
(clean: trailing whitespace and blank-line runs, align: table cells) run when
listed in --pipeline or [format].pipeline. Use "-" to format stdin to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFmt,
	}
	f := cmd.Flags()
	f.Bool("check", false, "check if files are properly formatted")
	f.String("format", "text", "output format (text|json)")
	f.Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	f.String("pipeline", "", "comma-separated transforms to apply (format,clean,align)")
	f.Int("indent", 0, "spaces per nesting level (default from config, 4)")
	f.Bool("nfc", false, "compose text to Unicode NFC before formatting")
	f.Int("jobs", 0, "max parallel workers (0=auto)")
	return cmd
}

// fmtOutput is where per-file results go.
type fmtOutput int

const (
	fmtOutputText   fmtOutput = iota // changed paths
	fmtOutputJSON                    // one JSON report
	fmtOutputStdout                  // formatted content
)

var errFmtFailed = errors.New("fmt: failed to format some files")

func fmtOutputFrom(cmd *cobra.Command, check bool) (fmtOutput, error) {
	format, _ := cmd.Flags().GetString("format")
	stdout, _ := cmd.Flags().GetBool("stdout")
	switch {
	case format != "text" && format != "json":
		return 0, fmt.Errorf("fmt: unsupported output format %q", format)
	case stdout && check:
		return 0, errors.New("fmt: --stdout cannot be used with --check")
	case stdout && format != "text":
		return 0, errors.New("fmt: --stdout is only supported with text output")
	case stdout:
		return fmtOutputStdout, nil
	case format == "json":
		return fmtOutputJSON, nil
	}
	return fmtOutputText, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	check, _ := cmd.Flags().GetBool("check")
	output, err := fmtOutputFrom(cmd, check)
	if err != nil {
		return err
	}
	root := cmd.Root().PersistentFlags()
	quiet, _ := root.GetBool("quiet")
	showTimings, _ := root.GetBool("timings")

	loaded, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	opts, err := formatOptionsFromConfig(cmd, loaded.Config)
	if err != nil {
		return err
	}
	opts.Check = check
	opts.Stdout = output == fmtOutputStdout

	if isStdin(args) {
		return fmtStdin(cmd, opts, quiet)
	}

	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
		defer printTimings(cmd.ErrOrStderr(), timer, nil)
	}
	stop := timer.Start("format")
	results, err := driver.FormatPaths(cmd.Context(), args, opts)
	stop(fmt.Sprintf("%d files, pipeline %s", len(results), opts.Pipeline))
	if err != nil {
		dumpTraceRing(cmd, cmd.ErrOrStderr(), "fmt failed")
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var failed, changed int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			if output != fmtOutputJSON {
				fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			}
		case output == fmtOutputStdout:
			_, _ = out.Write(res.Formatted)
		case res.Changed:
			changed++
			if output == fmtOutputText && !quiet {
				writeChangedPath(out, res.Path, check)
				if res.MixedEOL {
					fmt.Fprintf(errOut, "note: %s: mixed line endings unified\n", res.Path)
				}
			}
		}
	}
	if output == fmtOutputJSON {
		if err := writeFmtJSON(out, results, check); err != nil {
			return err
		}
	}

	switch {
	case failed > 0:
		return errFmtFailed
	case check && changed > 0:
		return errReported
	}
	return nil
}

func fmtStdin(cmd *cobra.Command, opts driver.FormatOptions, quiet bool) error {
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("fmt: failed to read stdin: %w", err)
	}
	sf := source.FromBytes("<stdin>", content)
	formatted := sf.Restore(driver.FormatSource(sf.Content, opts))
	if !opts.Check {
		_, err = cmd.OutOrStdout().Write(formatted)
		return err
	}
	if bytes.Equal(formatted, content) {
		return nil
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "<stdin>")
	}
	return errReported
}

func writeChangedPath(w io.Writer, path string, check bool) {
	if check {
		fmt.Fprintln(w, path)
		return
	}
	fmt.Fprintf(w, "reformatted %s\n", path)
}

// formatOptionsFromConfig merges [format]/[files] with explicitly set flags.
func formatOptionsFromConfig(cmd *cobra.Command, cfg config.Config) (driver.FormatOptions, error) {
	pipeline, err := cfg.Pipeline()
	if err != nil {
		return driver.FormatOptions{}, err
	}
	opts := driver.FormatOptions{
		Pipeline:   pipeline,
		Format:     cfg.FormatOptions(),
		NFC:        cfg.Format.NFC,
		Extensions: cfg.Files.Extensions,
	}

	f := cmd.Flags()
	if f.Changed("pipeline") {
		spec, _ := f.GetString("pipeline")
		if opts.Pipeline, err = latex.ParsePipeline(spec); err != nil {
			return opts, fmt.Errorf("--pipeline: %w", err)
		}
	}
	if f.Changed("indent") {
		indent, _ := f.GetInt("indent")
		if err := latex.CheckIndentSize(indent); err != nil {
			return opts, fmt.Errorf("--%w", err)
		}
		opts.Format.IndentSize = indent
	}
	if f.Changed("nfc") {
		opts.NFC, _ = f.GetBool("nfc")
	}
	if opts.Jobs, err = f.GetInt("jobs"); err != nil {
		return opts, err
	}
	if opts.Jobs < 0 {
		return opts, fmt.Errorf("--jobs must be >= 0, got %d", opts.Jobs)
	}
	return opts, nil
}

type fmtJSONFile struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

type fmtJSONReport struct {
	Check   bool          `json:"check"`
	Changed int           `json:"changed"`
	Failed  int           `json:"failed"`
	Files   []fmtJSONFile `json:"files"`
}

func writeFmtJSON(w io.Writer, results []driver.FormatResult, check bool) error {
	report := fmtJSONReport{Check: check, Files: make([]fmtJSONFile, 0, len(results))}
	for _, res := range results {
		file := fmtJSONFile{Path: res.Path, Changed: res.Changed}
		if res.Err != nil {
			file.Error = res.Err.Error()
			report.Failed++
		} else if res.Changed {
			report.Changed++
		}
		report.Files = append(report.Files, file)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
