package playback

import (
	"time"

	"hdxvis/internal/capture"
)

// Track is a selectable asset. ID is opaque to the controller.
type Track struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EventKind int

const (
	// EventSeekCompleted acknowledges a Seek. Position is the seek target.
	EventSeekCompleted EventKind = iota + 1
	// EventCompleted is sent once per full playthrough.
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventSeekCompleted:
		return "seek-completed"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is emitted by an Engine on its Events channel.
type Event struct {
	Kind     EventKind
	Position time.Duration
}

// Engine drives one loaded track. Seek is asynchronous and acknowledged
// through Events.
type Engine interface {
	Duration() time.Duration
	Position() time.Duration
	Play() error
	Pause() error
	Stop() error
	Seek(pos time.Duration) error
	Release() error
	Events() <-chan Event
	AudioSession() capture.Handle
}

// Backend loads tracks by identifier.
type Backend interface {
	Load(id string) (Engine, error)
}
