package version

import (
	"runtime/debug"
	"strings"
)

// Info is the build metadata reported by `texlint version`.
type Info struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
	GoVersion  string `json:"go_version,omitempty"`
}

var readBuildInfo = debug.ReadBuildInfo

// Current collects the -ldflags values. Commit and date missing there are
// taken from the VCS stamp `go build` embeds in the binary.
func Current() Info {
	info := Info{
		Version:    strings.TrimSpace(Version),
		GitCommit:  strings.TrimSpace(GitCommit),
		GitMessage: strings.TrimSpace(GitMessage),
		BuildDate:  strings.TrimSpace(BuildDate),
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	modified := false
	for _, kv := range bi.Settings {
		switch kv.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = kv.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = kv.Value
			}
		case "vcs.modified":
			modified = kv.Value == "true"
		}
	}
	if modified && info.GitCommit != "" && GitCommit == "" {
		info.GitCommit += "-dirty"
	}
	return info
}
