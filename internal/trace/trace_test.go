package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeType, false},
		{LevelDebug, ScopeType, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeDriver, Name: name})
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d, want 3", len(snap))
	}
	var names []string
	for _, ev := range snap {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Fatalf("snapshot = %s, want c,d,e", got)
	}
}

func TestSpanNesting(t *testing.T) {
	r := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), r)
	root := Begin(FromContext(ctx), ScopeDriver, "check", 0)
	ctx = WithSpan(ctx, root)
	pass := Begin(FromContext(ctx), ScopePass, "exports", CurrentSpan(ctx).SpanID)
	skipped := Begin(FromContext(ctx), ScopeType, "N.C", pass.ID())
	skipped.End("")
	pass.WithExtra("reported", "2").End("")
	root.End("")

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("events = %d, want 4 (type scope filtered)", len(snap))
	}
	if snap[1].ParentID != root.ID() {
		t.Errorf("pass parent = %d, want %d", snap[1].ParentID, root.ID())
	}
	if snap[2].Kind != KindSpanEnd || snap[2].Extra["reported"] != "2" {
		t.Errorf("unexpected pass end event: %+v", snap[2])
	}
}

func TestStreamTracerFormats(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Begin(st, ScopePass, "overrides", 0).WithExtra("reported", "1").End("done")
	if err := st.Flush(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), buf.String())
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.Scope != "pass" || ev.Detail != "done" || ev.Extra["reported"] != "1" {
		t.Errorf("unexpected event: %+v", ev)
	}

	buf.Reset()
	text := NewStreamTracer(&buf, LevelPhase, FormatAuto)
	text.Emit(&Event{Kind: KindPoint, Scope: ScopeDriver, Name: "cache", Detail: "hit", Extra: map[string]string{"b": "2", "a": "1"}})
	if got := buf.String(); !strings.Contains(got, "• cache (hit) {a=1, b=2}") {
		t.Errorf("text line = %q", got)
	}
}

func TestParseFormatAndPath(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(json) = %v, %v", f, err)
	}
	if _, err := ParseFormat("chrome"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if formatForPath("run.ndjson") != FormatNDJSON || formatForPath("-") != FormatText {
		t.Fatal("unexpected auto format")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer must be disabled")
	}
	if Ring(tr) != nil {
		t.Fatal("nop tracer has no ring")
	}
	both, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if Ring(both) == nil {
		t.Fatal("both mode must expose its ring")
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "Phase", " DEBUG "} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if l, _ := ParseLevel("detail"); l != LevelDetail || l.String() != "detail" {
		t.Fatalf("detail round trip = %v", l)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestMultiTracerSkipsNil(t *testing.T) {
	a := NewRingTracer(4, LevelPhase)
	m := NewMultiTracer(LevelPhase, a, nil)
	m.Emit(&Event{Kind: KindPoint, Scope: ScopePass, Name: "x"})
	if a.Len() != 1 {
		t.Fatalf("ring len = %d, want 1", a.Len())
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if NewMultiTracer(LevelPhase).Enabled() {
		t.Fatal("empty multi tracer must be disabled")
	}
}

func TestHeartbeat(t *testing.T) {
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("no heartbeat for a disabled tracer")
	}
	r := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(r, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for r.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	snap := r.Snapshot()
	if len(snap) == 0 {
		t.Fatal("no heartbeat recorded")
	}
	if snap[0].Kind != KindHeartbeat || snap[0].Extra["goroutines"] == "" {
		t.Fatalf("unexpected event: %+v", snap[0])
	}
}
