package playback

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession        = errors.New("playback: no track loaded")
	ErrControllerClosed = errors.New("playback: controller closed")
)

// LoadError means a track could not be resolved, decoded or attached to
// capture. The previous session, if any, is left as it was.
type LoadError struct {
	TrackID string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("playback: load %q: %v", e.TrackID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PlaybackError is an engine command rejected in the engine's current state.
type PlaybackError struct {
	Op  string
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback: %s: %v", e.Op, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// ClockRaceError reports a tick observed after its clock stopped. It is
// logged and dropped, never applied to the position.
type ClockRaceError struct {
	Session string
}

func (e *ClockRaceError) Error() string {
	return "playback: tick after clock stop in session " + e.Session
}
