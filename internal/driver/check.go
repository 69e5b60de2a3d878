package driver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"texlint/internal/diag"
	"texlint/internal/latex"
	"texlint/internal/source"
	"texlint/internal/trace"
)

// CheckOptions configures CheckPaths.
type CheckOptions struct {
	Jobs             int // parallel workers; <= 0 means GOMAXPROCS
	MaxDiagnostics   int // per file; <= 0 means unlimited
	Validate         latex.Options
	Disabled         []diag.Code
	WarningsAsErrors bool
	Extensions       []string
	Cache            *DiskCache
	Progress         ProgressSink
}

// CheckResult captures the validation of a single file.
type CheckResult struct {
	Path    string
	File    *source.File // nil when the file could not be loaded
	Bag     *diag.Bag
	Err     error
	Cached  bool
	Timings Timings
}

// HasErrors reports whether the result carries error diagnostics.
func (r CheckResult) HasErrors() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// CheckPaths validates the files under paths in parallel. A file that fails
// to load does not abort the run: its result carries Err and an IO4001
// diagnostic. The returned error is reserved for collection failures and
// cancellation.
func CheckPaths(ctx context.Context, paths []string, opts CheckOptions) ([]CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, runSpan := trace.Start(ctx, trace.ScopeDriver, "check", "")
	defer runSpan.End("")

	files, err := CollectFiles(ctx, paths, opts.Extensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("check: no LaTeX files found")
	}
	runSpan.AttrInt("files", len(files))

	results := make([]CheckResult, len(files))
	for i, path := range files {
		results[i].Path = path
	}
	emitQueued(opts.Progress, files)

	err = forEach(ctx, len(results), opts.Jobs, func(ctx context.Context, i int) {
		res := &results[i]
		fctx, fileSpan := trace.Start(ctx, trace.ScopeFile, "file", res.Path)
		loadOne(res, opts.Progress)
		checkOne(fctx, res, opts)
		fileSpan.AttrInt("diagnostics", res.Bag.Len()).End(statusOf(res))
	})
	return results, err
}

// CheckSource validates content that does not come from disk (stdin, editors).
func CheckSource(name string, content []byte, opts CheckOptions) CheckResult {
	res := CheckResult{Path: name, File: source.Virtual(name, content, false)}
	checkOne(context.Background(), &res, opts)
	return res
}

func loadOne(res *CheckResult, progress ProgressSink) {
	emit(progress, Event{File: res.Path, Stage: StageLoad, Status: StatusWorking})
	start := time.Now()
	res.File, res.Err = source.Load(res.Path)
	res.Timings.Load = time.Since(start)
}

func checkOne(ctx context.Context, res *CheckResult, opts CheckOptions) {
	res.Bag = diag.NewBag(opts.MaxDiagnostics)

	if res.File == nil {
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, 0, 0, "failed to load file: "+errString(res.Err)))
		emit(opts.Progress, Event{File: res.Path, Stage: StageLoad, Status: StatusError, Err: res.Err})
		return
	}

	emit(opts.Progress, Event{File: res.Path, Stage: StageValidate, Status: StatusWorking})
	vctx, span := trace.Start(ctx, trace.ScopeStage, "validate", res.Path)
	start := time.Now()

	raw, cached, cacheErr := validateCached(res.File, opts)
	res.Cached = cached

	res.Timings.Validate = time.Since(start)
	if cached {
		trace.Point(vctx, "cache", "hit")
	}
	span.End("")

	for _, d := range finalize(raw, opts) {
		res.Bag.Add(d)
	}
	if cacheErr != nil {
		res.Bag.Add(diag.New(diag.SevInfo, diag.IOCacheError, 0, 0, "cache: "+cacheErr.Error()))
	}

	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, Event{
		File:     res.Path,
		Stage:    StageValidate,
		Status:   status,
		Elapsed:  res.Timings.Total(),
		Errors:   res.Bag.Count(diag.SevError),
		Warnings: res.Bag.Count(diag.SevWarning),
	})
}

// validateCached returns the unfiltered validator output for f.
func validateCached(f *source.File, opts CheckOptions) (diags []diag.Diagnostic, hit bool, cacheErr error) {
	var key CacheKey
	if opts.Cache != nil {
		key = NewCacheKey(f.Content, opts.Validate)
		var payload DiskPayload
		ok, err := opts.Cache.Get(key, &payload)
		if err != nil {
			cacheErr = fmt.Errorf("read %s: %w", key.String()[:12], err)
		} else if ok {
			return payload.Diagnostics, true, nil
		}
	}

	bag := diag.NewBag(0)
	latex.ValidateWith(f.Text(), opts.Validate, bag)
	diags = bag.Items()

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, &DiskPayload{Path: f.Path, Diagnostics: diags}); err != nil && cacheErr == nil {
			cacheErr = fmt.Errorf("write %s: %w", key.String()[:12], err)
		}
	}
	return diags, false, cacheErr
}

// finalize drops disabled codes and promotes warnings when asked to.
func finalize(raw []diag.Diagnostic, opts CheckOptions) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(raw))
	for _, d := range raw {
		if slices.Contains(opts.Disabled, d.Code) {
			continue
		}
		if opts.WarningsAsErrors && d.Severity == diag.SevWarning {
			d.Severity = diag.SevError
		}
		out = append(out, d)
	}
	return out
}

func statusOf(res *CheckResult) string {
	switch {
	case res.Err != nil:
		return "load error"
	case res.Bag.HasErrors():
		return "errors"
	case res.Cached:
		return "ok (cached)"
	default:
		return "ok"
	}
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Summary aggregates a set of results.
type Summary struct {
	Files    int
	Errors   int
	Warnings int
	Cached   int
	Failed   int // files that could not be loaded
}

// Summarize counts diagnostics over results.
func Summarize(results []CheckResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		}
		if r.Cached {
			s.Cached++
		}
		if r.Bag == nil {
			continue
		}
		s.Errors += r.Bag.Count(diag.SevError)
		s.Warnings += r.Bag.Count(diag.SevWarning)
	}
	return s
}
