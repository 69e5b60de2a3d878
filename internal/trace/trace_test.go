package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		lvl, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if !strings.EqualFold(lvl.String(), s) {
			t.Fatalf("ParseLevel(%q) = %v", s, lvl)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, true},
		{LevelError, ScopeFile, false},
		{LevelPhase, ScopeFile, true},
		{LevelPhase, ScopeStage, false},
		{LevelDetail, ScopeStage, true},
		{LevelDetail, scopePoint, false},
		{LevelDebug, scopePoint, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestStreamSpansText(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTracer(context.Background(), tr)

	ctx, run := Start(ctx, ScopeDriver, "check", "")
	fctx, file := Start(ctx, ScopeFile, "file", "cv.tex")
	_, stage := Start(fctx, ScopeStage, "validate", "cv.tex")
	stage.End("")
	file.AttrInt("diagnostics", 2).End("ok")
	run.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines (stage events filtered), got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "→ check") {
		t.Errorf("unexpected begin line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "→ file cv.tex") {
		t.Errorf("unexpected file begin line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "← file cv.tex (ok) diagnostics=2 [") {
		t.Errorf("unexpected end line: %q", lines[2])
	}
}

func TestSpanParentsAndSequence(t *testing.T) {
	ring := NewRing(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	ctx, run := Start(ctx, ScopeDriver, "fmt", "")
	_, stage := Start(ctx, ScopeStage, "format", "a.tex")
	stage.End("")
	stage.End("") // повторный End ничего не пишет
	run.End("")

	evs := ring.Snapshot()
	if len(evs) != 4 {
		t.Fatalf("expected 4 events, got %d", len(evs))
	}
	if evs[1].ParentID != run.ID() || evs[1].File != "a.tex" {
		t.Fatalf("stage begin = %+v", evs[1])
	}
	for i := 1; i < len(evs); i++ {
		if evs[i].Seq <= evs[i-1].Seq {
			t.Fatalf("sequence not increasing: %d then %d", evs[i-1].Seq, evs[i].Seq)
		}
	}
}

func TestPointNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Mode: ModeStream, Format: FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTracer(context.Background(), tr)
	ctx, file := Start(ctx, ScopeFile, "file", "cv.tex")
	buf.Reset()
	Point(ctx, "cache", "hit")

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["name"] != "cache" || ev["detail"] != "hit" || ev["file"] != "cv.tex" {
		t.Fatalf("unexpected event: %v", ev)
	}
	if ev["parent_id"] != float64(file.ID()) {
		t.Fatalf("parent_id = %v", ev["parent_id"])
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRing(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeFile, Name: name})
	}
	snap := ring.Snapshot()
	var names []string
	for _, ev := range snap {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Fatalf("snapshot order = %s", got)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestNilSpanIsSafe(t *testing.T) {
	ctx, span := Start(context.Background(), ScopeFile, "file", "x.tex")
	if span != nil {
		t.Fatal("no tracer in context must give a nil span")
	}
	span.Attr("k", "v").AttrInt("n", 1)
	if span.End("") != 0 || span.ID() != 0 {
		t.Fatal("nil span must be inert")
	}
	Point(ctx, "cache", "hit")
	if FromContext(ctx) != Nop {
		t.Fatal("empty context must yield Nop")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr != Nop {
		t.Fatalf("off tracer = %T", tr)
	}
}

func TestNewBothFansOut(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	_, span := Start(WithTracer(context.Background(), tr), ScopeDriver, "check", "")
	span.End("")
	if buf.Len() == 0 {
		t.Fatal("stream side received nothing")
	}
	ring, ok := RingOf(tr)
	if !ok || len(ring.Snapshot()) != 2 {
		t.Fatalf("ring side not reachable or incomplete: %v", ok)
	}
	if _, ok := RingOf(Nop); ok {
		t.Fatal("nop tracer has no ring")
	}
	if tr.Level() != LevelPhase {
		t.Fatalf("tee level = %v", tr.Level())
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestHeartbeatReportsOpenFiles(t *testing.T) {
	ring := NewRing(64, LevelError)
	ctx := WithTracer(context.Background(), ring)
	_, file := Start(ctx, ScopeFile, "file", "slow.tex")

	stop := StartHeartbeat(ctx, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()
	stop()
	file.End("")

	snap := ring.Snapshot()
	if len(snap) == 0 {
		t.Fatal("no heartbeat recorded")
	}
	if snap[0].Kind != KindHeartbeat || !strings.Contains(snap[0].Detail, "1 file(s) in flight") {
		t.Fatalf("unexpected heartbeat: %+v", snap[0])
	}
}

func TestParseModeAndFormat(t *testing.T) {
	if m, err := ParseMode("ring"); err != nil || m != ModeRing {
		t.Fatalf("ParseMode(ring) = %v, %v", m, err)
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Fatal("expected error")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(ndjson) = %v, %v", f, err)
	}
	if formatFor("run.jsonl") != FormatNDJSON || formatFor("-") != FormatText {
		t.Fatal("format by extension")
	}
}
