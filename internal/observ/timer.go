// Package observ measures how long the driver's phases take.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one timed step. A nested phase ran inside the preceding
// top-level one (a pass inside "validate") and does not count towards the
// total.
type Phase struct {
	Name   string
	Start  time.Time
	Dur    time.Duration
	Note   string
	Nested bool
}

// Timer collects phases; safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin opens a top-level phase and returns the index End expects.
func (t *Timer) Begin(name string) int {
	return t.push(Phase{Name: name, Start: time.Now()})
}

// End closes the phase at idx; unknown indices are ignored.
func (t *Timer) End(idx int, note string) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx >= 0 && idx < len(t.phases) {
		p := &t.phases[idx]
		p.Dur, p.Note = now.Sub(p.Start), note
	}
}

// Record adds a nested phase whose duration was measured elsewhere.
func (t *Timer) Record(name string, dur time.Duration, note string) {
	t.push(Phase{Name: name, Dur: dur, Note: note, Nested: true})
}

func (t *Timer) push(p Phase) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, p)
	return len(t.phases) - 1
}

// PhaseReport is the serialisable form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
	Nested     bool    `json:"nested,omitempty"`
}

// Report is a snapshot of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the phases recorded so far.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	if len(t.phases) == 0 {
		return r
	}
	r.Phases = make([]PhaseReport, 0, len(t.phases))
	for _, p := range t.phases {
		ms := millis(p.Dur)
		if !p.Nested {
			r.TotalMS += ms
		}
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: ms, Note: p.Note, Nested: p.Nested})
	}
	return r
}

// Summary renders the report as an aligned table; nested phases are
// indented under their parent.
func (t *Timer) Summary() string {
	r := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	row := func(name string, ms float64, note string) {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", name, ms)
		if note != "" {
			fmt.Fprintf(&b, "  // %s", note)
		}
		b.WriteByte('\n')
	}
	for _, p := range r.Phases {
		name := p.Name
		if p.Nested {
			name = "  " + name
		}
		row(name, p.DurationMS, p.Note)
	}
	row("total", r.TotalMS, "")
	return b.String()
}

func millis(d time.Duration) float64 { return d.Seconds() * 1000 }
