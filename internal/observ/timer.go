// Package observ measures the phases of a CLI run for --timings.
package observ

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"
)

// Phase is one measured step of a run (collect, check, render, ...).
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
	// Summed phases add up work done by parallel workers; they overlap
	// the wall-clock phases and stay out of the total.
	Summed bool
}

// Timer collects phases in the order they start. A nil *Timer is valid
// and records nothing, so callers need no "timings enabled" checks.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// Start opens a phase and returns the function that closes it.
func (t *Timer) Start(name string) (stop func(note string)) {
	if t == nil {
		return func(string) {}
	}
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, Phase{Name: name})
	began := t.now()
	t.mu.Unlock()

	var once sync.Once
	return func(note string) {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.phases[idx].Dur = t.now().Sub(began)
			t.phases[idx].Note = note
		})
	}
}

// Record adds a summed phase measured elsewhere.
func (t *Timer) Record(name string, dur time.Duration, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Dur: dur, Note: note, Summed: true})
}

// PhaseReport is the serialisable form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
	Summed     bool    `json:"summed,omitempty"`
}

// Report is a snapshot of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var rep Report
	var total time.Duration
	for _, p := range t.phases {
		if !p.Summed {
			total += p.Dur
		}
		rep.Phases = append(rep.Phases, PhaseReport{
			Name:       p.Name,
			DurationMS: millis(p.Dur),
			Note:       p.Note,
			Summed:     p.Summed,
		})
	}
	rep.TotalMS = millis(total)
	return rep
}

// Write prints the report as an aligned table. Summed phases carry a
// "Σ" suffix.
func (r Report) Write(w io.Writer) error {
	if _, err := io.WriteString(w, "timings:\n"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range r.Phases {
		name := p.Name
		if p.Summed {
			name += " Σ"
		}
		fmt.Fprintf(tw, "  %s\t%8.2f ms\t%s\n", name, p.DurationMS, p.Note)
	}
	fmt.Fprintf(tw, "  total\t%8.2f ms\t\n", r.TotalMS)
	return tw.Flush()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
