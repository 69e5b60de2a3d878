package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Tracer receives events. Emit must be safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Level() Level
	Close() error
}

type nop struct{}

func (nop) Emit(*Event)  {}
func (nop) Level() Level { return LevelOff }
func (nop) Close() error { return nil }

// Nop discards everything.
var Nop Tracer = nop{}

// Mode selects where events are kept.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // written as they happen
	ModeRing                   // last N kept in memory
	ModeBoth                   // stream + ring
)

var modeNames = [...]string{"", "stream", "ring", "both"}

func (m Mode) String() string {
	if int(m) < len(modeNames) && m != 0 {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode converts a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames[1:] {
		if strings.EqualFold(s, name) {
			return Mode(i + 1), nil
		}
	}
	return 0, fmt.Errorf("invalid trace mode: %q (expected: stream|ring|both)", s)
}

// Config describes the tracer built by New.
type Config struct {
	Level      Level
	Mode       Mode
	Format     Format    // FormatAuto picks NDJSON for .ndjson/.jsonl paths
	Output     io.Writer // stream destination; OutputPath is used when nil
	OutputPath string    // "-" or empty for stderr
	RingSize   int       // default 4096
}

// New builds the tracer described by cfg.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Format == FormatAuto {
		cfg.Format = formatFor(cfg.OutputPath)
	}
	switch cfg.Mode {
	case ModeRing:
		return NewRing(cfg.RingSize, cfg.Level), nil
	case ModeStream, ModeBoth:
		w, closer, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		stream := &streamTracer{w: w, closer: closer, level: cfg.Level, format: cfg.Format}
		if cfg.Mode == ModeStream {
			return stream, nil
		}
		return Tee(stream, NewRing(cfg.RingSize, cfg.Level)), nil
	default:
		return nil, fmt.Errorf("unknown trace mode: %v", cfg.Mode)
	}
}

func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return os.Stderr, nil, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, f, nil
}

// keep reports whether a sink at level stores ev.
func keep(level Level, ev *Event) bool {
	return ev != nil && ((ev.Kind == KindHeartbeat && level > LevelOff) || level.ShouldEmit(ev.Scope))
}

type streamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer // only for files we opened
	level  Level
	format Format
}

func (t *streamTracer) Emit(ev *Event) {
	if !keep(t.level, ev) {
		return
	}
	data := Encode(ev, t.format)
	t.mu.Lock()
	defer t.mu.Unlock()
	// трасса не должна ронять прогон
	_, _ = t.w.Write(data)
}

func (t *streamTracer) Level() Level { return t.level }

func (t *streamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer = nil
	return err
}

// Ring keeps the most recent events for a dump after a failure.
type Ring struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
	level  Level
}

// NewRing returns a ring holding up to size events (4096 when size <= 0).
func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = 4096
	}
	return &Ring{events: make([]Event, size), level: level}
}

func (r *Ring) Emit(ev *Event) {
	if !keep(r.level, ev) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = *ev
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
}

func (r *Ring) Level() Level { return r.level }

func (r *Ring) Close() error { return nil }

// Snapshot returns the stored events, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.events[:r.next]...)
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

// Dump writes the snapshot to w.
func (r *Ring) Dump(w io.Writer, format Format) error {
	for _, ev := range r.Snapshot() {
		if _, err := w.Write(Encode(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

type tee []Tracer

// Tee fans events out to every tracer. Its level is the most verbose one.
func Tee(tracers ...Tracer) Tracer {
	return tee(tracers)
}

func (t tee) Emit(ev *Event) {
	for _, tr := range t {
		tr.Emit(ev)
	}
}

func (t tee) Level() Level {
	var lvl Level
	for _, tr := range t {
		lvl = max(lvl, tr.Level())
	}
	return lvl
}

func (t tee) Close() error {
	var errs []error
	for _, tr := range t {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// RingOf returns the ring behind t, looking through Tee.
func RingOf(t Tracer) (*Ring, bool) {
	switch tr := t.(type) {
	case *Ring:
		return tr, true
	case tee:
		for _, inner := range tr {
			if r, ok := RingOf(inner); ok {
				return r, true
			}
		}
	}
	return nil, false
}
