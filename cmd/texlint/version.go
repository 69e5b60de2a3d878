package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"texlint/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show texlint build information",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("hash", false, "include git commit hash")
	cmd.Flags().Bool("message", false, "include git commit message")
	cmd.Flags().Bool("date", false, "include build timestamp")
	cmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

// versionPayload is the --format json document.
type versionPayload struct {
	Tool string `json:"tool"`
	version.Info
}

func runVersion(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	format, _ := f.GetString("format")
	full, _ := f.GetBool("full")
	want := func(name string) bool {
		on, _ := f.GetBool(name)
		return on || full
	}

	info := version.Current()
	shown := version.Info{Version: info.Version}
	pick := func(dst *string, value string, on bool) {
		if on {
			*dst = orUnknown(value)
		}
	}
	pick(&shown.GitCommit, info.GitCommit, want("hash"))
	pick(&shown.GitMessage, info.GitMessage, want("message"))
	pick(&shown.BuildDate, info.BuildDate, want("date"))
	pick(&shown.GoVersion, info.GoVersion, full)

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(versionPayload{Tool: "texlint", Info: shown})
	case "pretty":
		return writeVersionPretty(out, shown)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func writeVersionPretty(out io.Writer, info version.Info) error {
	v := info.Version
	if v == strings.TrimSpace(version.Version) {
		v = version.Colored()
	}
	if _, err := fmt.Fprintf(out, "texlint %s\n", v); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	for _, row := range [][2]string{
		{"commit:", info.GitCommit},
		{"message:", info.GitMessage},
		{"built:", info.BuildDate},
		{"go:", info.GoVersion},
	} {
		if row[1] != "" {
			fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
		}
	}
	return tw.Flush()
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
