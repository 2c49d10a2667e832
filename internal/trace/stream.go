package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes every event to an io.Writer as it arrives.
type StreamTracer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	out    io.Writer
	level  Level
	format Format
	err    error
}

// NewStreamTracer creates a StreamTracer. FormatAuto means text.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{
		w:      bufio.NewWriter(w),
		out:    w,
		level:  level,
		format: format,
	}
}

// Emit writes an event. Everything except span begins is flushed at once.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if _, err := t.w.Write(data); err != nil {
		// first write error disables the stream; validation goes on
		t.err = err
		return
	}
	if ev.Kind != KindSpanBegin {
		t.err = t.w.Flush()
	}
}

// Flush writes buffered events.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}

// Close flushes and closes the writer if it is an io.Closer.
func (t *StreamTracer) Close() error {
	ferr := t.Flush()
	if closer, ok := t.out.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	return ferr
}

// Level returns the current tracing level.
func (t *StreamTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *StreamTracer) Enabled() bool {
	return t.level > LevelOff
}
