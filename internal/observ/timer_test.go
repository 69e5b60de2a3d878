package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	stop := tm.Start("collect")
	stop("3 files")
	stop("ignored")
	tm.Record("validate", 5*time.Millisecond, "")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(rep.Phases))
	}
	if rep.Phases[0].Note != "3 files" || rep.Phases[0].DurationMS != 1 {
		t.Fatalf("unexpected first phase %+v", rep.Phases[0])
	}
	if !rep.Phases[1].Summed || rep.Phases[1].DurationMS != 5 {
		t.Fatalf("unexpected summed phase %+v", rep.Phases[1])
	}
	if rep.TotalMS != 1 {
		t.Fatalf("summed phases must not count towards total, got %v", rep.TotalMS)
	}

	var b strings.Builder
	if err := rep.Write(&b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{"timings:\n", "collect", "3 files", "validate Σ", "total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary lacks %q:\n%s", want, out)
		}
	}
}

func TestNestedPhasesKeepStartOrder(t *testing.T) {
	tm := NewTimer()
	outer := tm.Start("check")
	inner := tm.Start("render")
	inner("")
	outer("")
	rep := tm.Report()
	if rep.Phases[0].Name != "check" || rep.Phases[1].Name != "render" {
		t.Fatalf("unexpected order %+v", rep.Phases)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Start("x")("")
	tm.Record("y", time.Second, "")
	if len(tm.Report().Phases) != 0 {
		t.Fatal("nil timer must report nothing")
	}
}
