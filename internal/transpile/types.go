package transpile

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageConfig is configuration resolution.
	StageConfig Stage = "config"
	// StageCheck is entry type-checking.
	StageCheck Stage = "check"
	// StageWalk is dependency discovery.
	StageWalk Stage = "walk"
	// StageConvert is per-file conversion and specifier rewriting.
	StageConvert Stage = "convert"
	// StageWrite is materialization into the session tree.
	StageWrite Stage = "write"
	// StageCleanup is session teardown.
	StageCleanup Stage = "cleanup"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or the overall pipeline when File is
// empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
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

func emit(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
