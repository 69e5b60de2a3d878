package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"texlint/internal/config"
	"texlint/internal/diag"
	"texlint/internal/diagfmt"
	"texlint/internal/driver"
	"texlint/internal/observ"
	"texlint/internal/version"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [path...]",
		Short: "Validate LaTeX files",
		Long: `Validate .tex files (directories are searched recursively) and report
unbalanced environments, mismatched brackets and unescaped special characters.
Use "-" to read a single document from stdin. Exits with status 1 when any
error is reported.`,
		RunE: runCheck,
	}
	f := cmd.Flags()
	f.String("format", "pretty", "output format (pretty|short|json|sarif)")
	f.Int("jobs", 0, "max parallel workers (0=auto)")
	f.Bool("cache", false, "reuse results from the on-disk cache")
	f.Bool("clear-cache", false, "drop the on-disk cache before checking")
	f.Bool("warnings-as-errors", false, "treat warnings as errors")
	f.Bool("report-unclosed-brackets", false, "report brackets still open at end of document")
	f.StringSlice("disable", nil, "diagnostic codes to drop (e.g. TEX2001)")
	f.String("path-mode", "auto", "how to print paths (auto|absolute|relative|basename)")
	f.Bool("with-notes", true, "include diagnostic notes in output")
	f.String("ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

type checkFlags struct {
	format    string
	jobs      int
	cache     bool
	clear     bool
	pathMode  diagfmt.PathMode
	notes     bool
	ui        tristate
	quiet     bool
	timings   bool
	maxDiags  int
	useColor  bool
	baseDir   string
	stdinName string
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	loaded, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	opts, err := checkOptionsFromConfig(cmd, loaded.Config)
	if err != nil {
		return err
	}
	opts.MaxDiagnostics = flags.maxDiags
	opts.Jobs = flags.jobs

	var timer *observ.Timer
	if flags.timings {
		timer = observ.NewTimer()
	}

	if flags.cache || flags.clear {
		cache, err := driver.OpenDiskCache("texlint")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "texlint: cache disabled: %v\n", err)
		} else {
			if flags.clear {
				if err := cache.DropAll(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
			}
			if flags.cache {
				opts.Cache = cache
			}
		}
	}

	var results []driver.CheckResult
	if isStdin(args) {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		results = []driver.CheckResult{driver.CheckSource(flags.stdinName, content, opts)}
	} else {
		if len(args) == 0 {
			args = []string{"."}
		}
		results, err = collectAndCheck(cmd, args, opts, flags, timer)
		if err != nil {
			dumpTraceRing(cmd, cmd.ErrOrStderr(), "check failed")
			return err
		}
	}

	reports := make([]diagfmt.Report, len(results))
	for i, res := range results {
		reports[i] = diagfmt.Report{Path: res.Path, File: res.File, Bag: res.Bag, Err: res.Err}
	}

	stopRender := timer.Start("render")
	if err := renderCheck(cmd, reports, flags); err != nil {
		return err
	}
	stopRender(flags.format)
	printTimings(cmd.ErrOrStderr(), timer, results)

	errorsCount, _ := diagfmt.Totals(reports)
	if errorsCount > 0 {
		return errReported
	}
	return nil
}

func collectAndCheck(cmd *cobra.Command, args []string, opts driver.CheckOptions, flags checkFlags, timer *observ.Timer) ([]driver.CheckResult, error) {
	ctx := cmd.Context()
	stopCollect := timer.Start("collect")
	files, err := driver.CollectFiles(ctx, args, opts.Extensions)
	stopCollect(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("check: no LaTeX files found")
	}

	defer timer.Start("check")("")
	if flags.format == "pretty" && !flags.quiet && flags.ui.resolve(func() bool { return len(files) > 1 && isTerminal(os.Stdout) }) {
		return runCheckWithUI(ctx, "checking", files, opts)
	}
	return driver.CheckPaths(ctx, files, opts)
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var (
		out checkFlags
		err error
	)
	f := cmd.Flags()
	if out.format, err = f.GetString("format"); err != nil {
		return out, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch out.format {
	case "pretty", "short", "json", "sarif":
	default:
		return out, fmt.Errorf("unknown format: %s", out.format)
	}
	if out.jobs, err = f.GetInt("jobs"); err != nil {
		return out, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if out.cache, err = f.GetBool("cache"); err != nil {
		return out, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if out.clear, err = f.GetBool("clear-cache"); err != nil {
		return out, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if out.notes, err = f.GetBool("with-notes"); err != nil {
		return out, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	pathMode, err := f.GetString("path-mode")
	if err != nil {
		return out, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if out.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return out, fmt.Errorf("invalid --path-mode value %q", pathMode)
	}
	uiValue, err := f.GetString("ui")
	if err != nil {
		return out, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if out.ui, err = parseTristate("ui", uiValue); err != nil {
		return out, err
	}

	pf := cmd.Root().PersistentFlags()
	if out.quiet, err = pf.GetBool("quiet"); err != nil {
		return out, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if out.timings, err = pf.GetBool("timings"); err != nil {
		return out, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if out.maxDiags, err = pf.GetInt("max-diagnostics"); err != nil {
		return out, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if out.useColor, err = colorEnabled(cmd); err != nil {
		return out, err
	}
	if wd, err := os.Getwd(); err == nil {
		out.baseDir = wd
	}
	out.stdinName = "<stdin>"
	return out, nil
}

func renderCheck(cmd *cobra.Command, reports []diagfmt.Report, flags checkFlags) error {
	out := cmd.OutOrStdout()
	switch flags.format {
	case "pretty":
		err := diagfmt.Pretty(out, reports, diagfmt.PrettyOpts{
			Color:     flags.useColor,
			PathMode:  flags.pathMode,
			BaseDir:   flags.baseDir,
			ShowNotes: flags.notes,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		if flags.quiet {
			return nil
		}
		errorsCount, warnings := diagfmt.Totals(reports)
		return diagfmt.Summary(out, len(reports), errorsCount, warnings, flags.useColor)
	case "short":
		return diagfmt.Short(out, reports, flags.pathMode, flags.baseDir, flags.notes)
	case "json":
		return diagfmt.JSON(out, reports, diagfmt.JSONOpts{
			PathMode:     flags.pathMode,
			BaseDir:      flags.baseDir,
			IncludeNotes: flags.notes,
		})
	case "sarif":
		return diagfmt.Sarif(out, reports, diagfmt.SarifRunMeta{
			ToolName:       "texlint",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args,
			PathMode:       flags.pathMode,
			BaseDir:        flags.baseDir,
		})
	}
	return fmt.Errorf("unknown format: %s", flags.format)
}

// checkOptionsFromConfig merges .texlint.toml values with explicitly set flags.
func checkOptionsFromConfig(cmd *cobra.Command, cfg config.Config) (driver.CheckOptions, error) {
	f := cmd.Flags()
	opts := driver.CheckOptions{
		Validate:         cfg.ValidateOptions(),
		WarningsAsErrors: cfg.Validate.WarningsAsErrors,
		Extensions:       cfg.Files.Extensions,
	}
	disabled, err := cfg.DisabledCodes()
	if err != nil {
		return opts, err
	}
	opts.Disabled = disabled

	if f.Changed("report-unclosed-brackets") {
		v, err := f.GetBool("report-unclosed-brackets")
		if err != nil {
			return opts, fmt.Errorf("failed to get report-unclosed-brackets flag: %w", err)
		}
		opts.Validate.ReportUnclosedBrackets = v
	}
	if f.Changed("warnings-as-errors") {
		v, err := f.GetBool("warnings-as-errors")
		if err != nil {
			return opts, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
		}
		opts.WarningsAsErrors = v
	}
	extra, err := f.GetStringSlice("disable")
	if err != nil {
		return opts, fmt.Errorf("failed to get disable flag: %w", err)
	}
	for _, id := range extra {
		code, ok := diag.ParseCode(id)
		if !ok {
			return opts, fmt.Errorf("--disable: unknown code %q", id)
		}
		opts.Disabled = append(opts.Disabled, code)
	}
	return opts, nil
}
