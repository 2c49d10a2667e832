package trace

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span ID; zero is never returned.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// getGoroutineID reads the goroutine number from the "goroutine N [...]"
// header of runtime.Stack. Returns 0 if the header is not recognised.
func getGoroutineID() uint64 {
	var buf [64]byte
	head := string(buf[:runtime.Stack(buf[:], false)])
	fields := strings.Fields(head)
	if len(fields) < 2 || fields[0] != "goroutine" {
		return 0
	}
	gid, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is an open begin/end pair. The zero-cost form (returned when the
// tracer is off or filters the scope) ignores every call.
type Span struct {
	tracer  Tracer
	ev      Event
	started time.Time
}

var disabledSpan = &Span{tracer: Nop}

func (s *Span) live() bool {
	return s != nil && s.tracer != nil && s.tracer.Enabled() && s.ev.SpanID != 0
}

// Begin opens a span under parent (0 for a root span) and emits its begin
// event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !emits(t, scope) {
		return disabledSpan
	}
	s := &Span{
		tracer:  t,
		started: time.Now(),
		ev: Event{
			Scope:    scope,
			SpanID:   NextSpanID(),
			ParentID: parent,
			GID:      getGoroutineID(),
			Name:     name,
		},
	}
	begin := s.ev
	begin.Kind = KindSpanBegin
	begin.Time = s.started
	begin.Seq = NextSeq()
	t.Emit(&begin)
	return s
}

// End emits the end event carrying detail and any extras; it returns the
// span duration.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	dur := time.Since(s.started)
	end := s.ev
	end.Kind = KindSpanEnd
	end.Time = time.Now()
	end.Seq = NextSeq()
	end.Detail = detail
	s.tracer.Emit(&end)
	return dur
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.ev.Extra == nil {
		s.ev.Extra = make(map[string]string, 2)
	}
	s.ev.Extra[key] = value
	return s
}

// ID is the span ID, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.ev.SpanID
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !emits(t, scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		GID:      getGoroutineID(),
		Name:     name,
		Detail:   detail,
	})
}

func emits(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}
