package session

import "github.com/pandalive/panda/internal/domain/entities"

// Event is an asynchronous state change pushed by a controller while a
// recording stream or a watcher is running.
type Event interface {
	isEvent()
}

// TranscriptUpdated signals that new transcript text arrived
type TranscriptUpdated struct {
	Text string
}

// TasksUpdated signals a refreshed task set
type TasksUpdated struct {
	Tasks []entities.Task
}

// ActiveResourceChanged signals that the highlighted resource changed.
// Resource is nil when no resource is active anymore.
type ActiveResourceChanged struct {
	Resource *entities.Resource
}

// Ended signals that the session finished; no further updates follow
type Ended struct {
	SessionID string
}

// StreamFailed signals a non-fatal delivery failure inside a stream
type StreamFailed struct {
	Err error
}

func (TranscriptUpdated) isEvent()     {}
func (TasksUpdated) isEvent()          {}
func (ActiveResourceChanged) isEvent() {}
func (Ended) isEvent()                 {}
func (StreamFailed) isEvent()          {}
