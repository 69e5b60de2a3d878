package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"texlint/internal/config"
	"texlint/internal/version"
)

// errReported means the command already printed why it failed
// (diagnostics, files needing formatting); main only sets the exit code.
var errReported = errors.New("problems reported")

// newRootCmd builds the command tree. Every call returns fresh flag state.
func newRootCmd() *cobra.Command {
	var cleanups []func()
	runCleanups := func() {
		// в обратном порядке: трасса закрывается раньше профилей
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		cleanups = nil
	}
	root := &cobra.Command{
		Use:   "texlint",
		Short: "Structural validator and formatter for LaTeX documents",
		Long: `texlint checks LaTeX sources for unbalanced environments and brackets
and unescaped special characters, and re-indents them by environment nesting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			useColor, err := colorEnabled(cmd)
			if err != nil {
				return err
			}
			color.NoColor = !useColor

			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			cleanups = append(cleanups, stopProfiling)
			stopTracing, err := setupTracing(cmd)
			if err != nil {
				runCleanups()
				return err
			}
			cleanups = append(cleanups, stopTracing)
			return nil
		},
	}

	root.AddCommand(newCheckCmd())
	root.AddCommand(newFmtCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newLSPCmd())
	root.AddCommand(newVersionCmd())

	// PersistentPostRun не вызывается при ошибке RunE, поэтому очистка
	// оборачивает каждую подкоманду
	for _, sub := range root.Commands() {
		run := sub.RunE
		if run == nil {
			continue
		}
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			defer runCleanups()
			return run(cmd, args)
		}
	}

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per file (0 = unlimited)")
	pf.String("config", "", "path to "+config.FileName+" (default: search upwards)")
	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace encoding (auto|text|ndjson); auto picks ndjson for .ndjson/.jsonl files")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 = off)")
	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file on exit")
	pf.String("runtime-trace", "", "write Go runtime trace to file")
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "texlint: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func colorEnabled(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := parseTristate("color", value)
	if err != nil {
		return false, err
	}
	return mode.resolve(func() bool {
		return isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	}), nil
}

// loadConfig honours --config, otherwise searches upwards from the first
// path argument (or the working directory).
func loadConfig(cmd *cobra.Command, args []string) (*config.Loaded, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	start := "."
	if len(args) > 0 && args[0] != "-" {
		start = args[0]
	}
	return config.Discover(start)
}

func isStdin(args []string) bool {
	return len(args) == 1 && args[0] == "-"
}
