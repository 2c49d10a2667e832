package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerNestedPhasesExcludedFromTotal(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("validate")
	tm.End(idx, "4 passes")
	tm.Record("overrides", 5*time.Second, "3 reported")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(rep.Phases))
	}
	if rep.TotalMS >= 5000 {
		t.Fatalf("nested phase counted in total: %.2f ms", rep.TotalMS)
	}
	if !rep.Phases[1].Nested || rep.Phases[1].DurationMS != 5000 {
		t.Fatalf("unexpected nested phase: %+v", rep.Phases[1])
	}

	sum := tm.Summary()
	for _, want := range []string{"validate", "    overrides", "// 3 reported", "total"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary missing %q:\n%s", want, sum)
		}
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if rep := tm.Report(); len(rep.Phases) != 0 || rep.TotalMS != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}
