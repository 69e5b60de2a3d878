package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "Print the effective configuration",
		Long: `Print the configuration texlint would use for [path] (default: the
current directory): the nearest .texlint.toml merged over built-in defaults.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if loaded.Path != "" {
				fmt.Fprintf(out, "# loaded from %s\n", loaded.Path)
			} else {
				fmt.Fprintln(out, "# no config file found, using defaults")
			}
			return loaded.Config.Encode(out)
		},
	}
}
