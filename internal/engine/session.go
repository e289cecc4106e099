package engine

import (
	"errors"
	"time"

	"hdxvis/internal/capture"
	"hdxvis/internal/playback"
	"hdxvis/pkg/spec"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

var ErrReleased = errors.New("engine: session released")

const eventBuffer = 16

// Session is one loaded track playing into the shared mixer:
// track -> tap -> volume -> ctrl.
type Session struct {
	mixer  Mixer
	rate   beep.SampleRate
	handle capture.Handle
	taps   *Taps

	track  *trackStreamer
	tap    *tap
	volume *effects.Volume
	ctrl   *beep.Ctrl

	events chan playback.Event

	// guarded by the mixer lock
	released bool
}

func newSession(m Mixer, taps *Taps, h capture.Handle, buf *beep.Buffer, gain float64) *Session {
	s := &Session{
		mixer:  m,
		rate:   buf.Format().SampleRate,
		handle: h,
		taps:   taps,
		events: make(chan playback.Event, eventBuffer),
	}
	s.track = &trackStreamer{
		src: buf.Streamer(0, buf.Len()),
		onEnd: func() {
			s.emit(playback.Event{Kind: playback.EventCompleted})
		},
	}
	s.tap = newTap(s.track, spec.CaptureSizeMax)
	s.volume = &effects.Volume{Streamer: s.tap, Base: 2, Volume: gain}
	s.ctrl = &beep.Ctrl{Streamer: s.volume, Paused: true}
	return s
}

// emit never blocks. When the buffer is full the oldest event gives way.
func (s *Session) emit(ev playback.Event) {
	for {
		select {
		case s.events <- ev:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

func (s *Session) Events() <-chan playback.Event { return s.events }
func (s *Session) AudioSession() capture.Handle  { return s.handle }

func (s *Session) Duration() time.Duration {
	return s.rate.D(s.track.src.Len())
}

func (s *Session) Position() time.Duration {
	s.mixer.Lock()
	defer s.mixer.Unlock()
	return s.rate.D(s.track.src.Position())
}

func (s *Session) setPaused(paused bool) error {
	s.mixer.Lock()
	defer s.mixer.Unlock()
	if s.released {
		return ErrReleased
	}
	s.ctrl.Paused = paused
	return nil
}

func (s *Session) Play() error  { return s.setPaused(false) }
func (s *Session) Pause() error { return s.setPaused(true) }

// Stop pauses and rewinds.
func (s *Session) Stop() error {
	s.mixer.Lock()
	defer s.mixer.Unlock()
	if s.released {
		return ErrReleased
	}
	s.ctrl.Paused = true
	return s.track.seek(0)
}

// Seek moves the read position and acknowledges with EventSeekCompleted
// carrying pos unchanged.
func (s *Session) Seek(pos time.Duration) error {
	s.mixer.Lock()
	if s.released {
		s.mixer.Unlock()
		return ErrReleased
	}
	err := s.track.seek(s.rate.N(pos))
	s.mixer.Unlock()
	if err != nil {
		return err
	}
	s.emit(playback.Event{Kind: playback.EventSeekCompleted, Position: pos})
	return nil
}

// Release detaches the session from the mixer and the capture registry.
// Further commands fail with ErrReleased.
func (s *Session) Release() error {
	s.mixer.Lock()
	if s.released {
		s.mixer.Unlock()
		return nil
	}
	s.released = true
	s.track.released = true
	// a nil streamer makes the mixer drop the ctrl
	s.ctrl.Streamer = nil
	s.mixer.Unlock()

	s.taps.remove(s.handle)
	return nil
}
