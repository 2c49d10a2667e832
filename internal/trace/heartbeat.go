package trace

import (
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits liveness events while a long validation runs. Heartbeats
// without span ends in between point at a stuck pass; the goroutine count in
// Extra shows whether pass workers are still alive.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	started  time.Time
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat starts emitting heartbeat events every interval. It returns
// nil when tracing is off or interval is not positive; Stop accepts nil.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		started:  time.Now(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    getGoroutineID(),
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d after %s", beat, now.Sub(h.started).Round(time.Millisecond)),
				Extra:  map[string]string{"goroutines": strconv.Itoa(runtime.NumGoroutine())},
			})
		case <-h.stop:
			return
		}
	}
}

// Stop ends the heartbeat goroutine and waits for it. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
