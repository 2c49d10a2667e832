package driver

import (
	"time"

	"github.com/dotnet/roslyn-sub221/internal/observ"
)

// phaseTimer is an observ.Timer that may be switched off; all methods are
// no-ops on a disabled timer.
type phaseTimer struct {
	t *observ.Timer
}

func newPhaseTimer(enabled bool) phaseTimer {
	if !enabled {
		return phaseTimer{}
	}
	return phaseTimer{t: observ.NewTimer()}
}

func (p phaseTimer) begin(name string) int {
	if p.t == nil {
		return -1
	}
	return p.t.Begin(name)
}

func (p phaseTimer) end(idx int, note string) {
	if p.t == nil || idx < 0 {
		return
	}
	p.t.End(idx, note)
}

func (p phaseTimer) record(name string, dur time.Duration, note string) {
	if p.t == nil {
		return
	}
	p.t.Record(name, dur, note)
}

func (p phaseTimer) report() *observ.Report {
	if p.t == nil {
		return nil
	}
	r := p.t.Report()
	return &r
}

func (p phaseTimer) summary() string {
	if p.t == nil {
		return ""
	}
	return p.t.Summary()
}
