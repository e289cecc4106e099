package playback

import (
	"time"

	"hdxvis/internal/capture"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// session is everything owned by one loaded track. It is created whole on
// load and discarded whole on switch or teardown; nothing in it outlives it.
type session struct {
	id     string
	track  Track
	engine Engine
	events <-chan Event
	bridge *capture.Bridge
	clock  *Clock

	duration time.Duration
	position time.Duration
	playing  bool

	// resume waiting for the engine to acknowledge a seek to target
	pending bool
	target  time.Duration
}

func newSession(t Track, eng Engine, bridge *capture.Bridge, clock *Clock) *session {
	return &session{
		id:       uuid.NewString(),
		track:    t,
		engine:   eng,
		events:   eng.Events(),
		bridge:   bridge,
		clock:    clock,
		duration: max(eng.Duration(), 0),
	}
}

func (s *session) setPosition(p time.Duration) {
	s.position = lo.Clamp(p, 0, s.duration)
}

// active reports whether the session is playing or about to.
func (s *session) active() bool {
	return s.playing || s.pending
}

func (s *session) snapshot() Snapshot {
	return Snapshot{
		HasTrack: true,
		Playing:  s.playing,
		TrackID:  s.track.ID,
		Title:    s.track.Name,
		Position: s.position,
		Duration: s.duration,
	}
}
