package main

import (
	"fmt"
	"io"

	"texlint/internal/driver"
	"texlint/internal/observ"
)

// printTimings writes the phase summary of a run; per-file load and
// validate times are folded in as sums.
func printTimings(out io.Writer, timer *observ.Timer, results []driver.CheckResult) {
	if out == nil || timer == nil {
		return
	}
	if results != nil {
		driver.RecordTimings(timer, results)
	}
	if err := timer.Report().Write(out); err != nil {
		fmt.Fprintf(out, "timings: %v\n", err)
	}
}
