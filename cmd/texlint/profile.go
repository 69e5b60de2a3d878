package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"texlint/internal/prof"
)

// setupProfiling inspects persistent profiling flags and enables the
// corresponding profilers. The returned cleanup is safe to call twice.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	var opts prof.Options
	for name, dst := range map[string]*string{
		"cpu-profile":   &opts.CPUProfile,
		"mem-profile":   &opts.MemProfile,
		"runtime-trace": &opts.RuntimeTrace,
	} {
		v, err := flags.GetString(name)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		*dst = v
	}
	if !opts.Enabled() {
		return func() {}, nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "texlint: %v\n", err)
		}
	}, nil
}
