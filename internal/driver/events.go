package driver

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageLoad reads fixtures or a symbol store and binds the compilation.
	StageLoad Stage = "load"
	// StageValidate runs one declaration pass.
	StageValidate Stage = "validate"
	// StageExports folds module export tables.
	StageExports Stage = "exports"
	// StageReport sorts and filters the diagnostics.
	StageReport Stage = "report"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	// StatusCached marks work answered from the result cache.
	StatusCached Status = "cached"
)

// Event reports progress for one item: a fixture path, a pass name or
// "exports". An empty Item reports on the pipeline as a whole.
type Event struct {
	Item    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Validation passes report
// concurrently, so implementations must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

func emitQueued(sink ProgressSink, stage Stage, items []string) {
	for _, it := range items {
		emit(sink, Event{Item: it, Stage: stage, Status: StatusQueued})
	}
}
