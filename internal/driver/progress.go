package driver

import "time"

// Stage describes a step in the processing of one document.
type Stage string

const (
	StageLoad     Stage = "load"
	StageValidate Stage = "validate"
	StageFormat   Stage = "format"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
// Errors and Warnings are set on the final validate event.
type Event struct {
	File     string
	Stage    Stage
	Status   Status
	Err      error
	Elapsed  time.Duration
	Errors   int
	Warnings int
}

// ProgressSink consumes progress events. OnEvent may be called from
// several goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

// ChannelSink forwards events into a channel; sends block until received.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch != nil {
		s.Ch <- evt
	}
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

func emitQueued(sink ProgressSink, files []string) {
	for _, f := range files {
		emit(sink, Event{File: f, Status: StatusQueued})
	}
}

// Timings holds stage durations of one document. On a cache hit Validate
// is the lookup time.
type Timings struct {
	Load     time.Duration
	Validate time.Duration
}

// Total is the wall time spent on the document.
func (t Timings) Total() time.Duration { return t.Load + t.Validate }
