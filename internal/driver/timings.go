package driver

import (
	"fmt"
	"time"

	"texlint/internal/observ"
)

// RecordTimings adds per-stage sums over results to timer. The sums are
// CPU-side totals across workers and may exceed the wall-clock phase.
func RecordTimings(timer *observ.Timer, results []CheckResult) {
	if timer == nil || len(results) == 0 {
		return
	}
	var load, validate time.Duration
	cached := 0
	for _, r := range results {
		load += r.Timings.Load
		validate += r.Timings.Validate
		if r.Cached {
			cached++
		}
	}
	timer.Record("load", load, fmt.Sprintf("%d files", len(results)))
	note := ""
	if cached > 0 {
		note = fmt.Sprintf("%d cached", cached)
	}
	timer.Record("validate", validate, note)
}
