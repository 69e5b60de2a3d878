package driver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/text/unicode/norm"

	"texlint/internal/latex"
	"texlint/internal/source"
	"texlint/internal/trace"
)

// FormatOptions configures document formatting.
type FormatOptions struct {
	Jobs       int  // parallel workers; <= 0 means GOMAXPROCS
	Check      bool // report only, never write
	Stdout     bool // return formatted content instead of writing
	Pipeline   latex.Pipeline // DefaultPipeline when empty
	Format     latex.FormatOptions
	NFC        bool // compose Unicode to NFC before the pipeline runs
	Extensions []string
	Progress   ProgressSink
}

// FormatResult is the outcome for one file.
type FormatResult struct {
	Path      string
	Changed   bool   // content differs from the formatted form (and, when writing, was rewritten)
	Err       error
	Formatted []byte // set only with Stdout
	MixedEOL  bool   // line endings were unified to the dominant one
}

// FormatPaths formats files and directories; results follow collection
// order regardless of Jobs.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "format", "")
	defer span.End("")

	files, err := CollectFiles(ctx, paths, opts.Extensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("format: no LaTeX files found")
	}
	span.AttrInt("files", len(files))
	emitQueued(opts.Progress, files)

	results := make([]FormatResult, len(files))
	err = forEach(ctx, len(files), opts.Jobs, func(ctx context.Context, i int) {
		path := files[i]
		emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusWorking})
		_, fileSpan := trace.Start(ctx, trace.ScopeFile, "file", path)
		results[i] = formatFile(path, opts)
		fileSpan.End(formatStatus(results[i]))
		status := StatusDone
		if results[i].Err != nil {
			status = StatusError
		}
		emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: status, Err: results[i].Err})
	})
	return results, err
}

func formatStatus(res FormatResult) string {
	switch {
	case res.Err != nil:
		return "error"
	case res.Changed:
		return "changed"
	}
	return "unchanged"
}

func formatFile(path string, opts FormatOptions) FormatResult {
	res := FormatResult{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		res.Err = err
		return res
	}
	// #nosec G304 -- path comes from CollectFiles
	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	sf := source.FromBytes(path, raw)
	formatted := sf.Restore(FormatSource(sf.Content, opts))
	res.Changed = !bytes.Equal(raw, formatted)
	res.MixedEOL = sf.Flags&source.FlagMixedEOL != 0

	switch {
	case opts.Stdout:
		res.Formatted = formatted
	case opts.Check, !res.Changed:
	default:
		res.Err = writeAtomic(path, info.Mode().Perm(), func(w io.Writer) error {
			_, err := w.Write(formatted)
			return err
		})
		if res.Err != nil {
			res.Changed = false
		}
	}
	return res
}

// FormatSource runs the configured pipeline over normalized content.
func FormatSource(content []byte, opts FormatOptions) []byte {
	pipeline := opts.Pipeline
	if len(pipeline) == 0 {
		pipeline = latex.DefaultPipeline()
	}
	text := string(content)
	if opts.NFC {
		text = norm.NFC.String(text)
	}
	return []byte(pipeline.Apply(text, opts.Format))
}
