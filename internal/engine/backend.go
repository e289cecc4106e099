// Package engine plays wav tracks through the beep speaker and exposes
// their samples as a capture source.
package engine

import (
	"sync/atomic"

	"hdxvis/internal/capture"
	"hdxvis/internal/log"
	"hdxvis/internal/playback"
	"hdxvis/pkg/spec"

	"github.com/faiface/beep"
)

// Resolver maps a track id to a file path.
type Resolver interface {
	Path(id string) (string, error)
}

type Options struct {
	Resolver   Resolver
	Mixer      Mixer
	SampleRate beep.SampleRate
	Volume     float64
}

// Backend loads tracks into sessions on one mixer.
type Backend struct {
	resolver Resolver
	mixer    Mixer
	rate     beep.SampleRate
	volume   float64
	taps     *Taps
	handles  atomic.Int32
}

func NewBackend(opts Options) *Backend {
	if opts.SampleRate == 0 {
		opts.SampleRate = spec.SampleRate
	}
	return &Backend{
		resolver: opts.Resolver,
		mixer:    opts.Mixer,
		rate:     opts.SampleRate,
		volume:   opts.Volume,
		taps:     newTaps(),
	}
}

// Capture returns the capture source fed by every session of b.
func (b *Backend) Capture() capture.Source {
	return b.taps
}

// Load decodes the track and attaches it, paused, to the mixer.
func (b *Backend) Load(id string) (playback.Engine, error) {
	path, err := b.resolver.Path(id)
	if err != nil {
		return nil, err
	}
	buf, err := decodeWAV(path, b.rate)
	if err != nil {
		return nil, err
	}

	h := capture.Handle(b.handles.Add(1))
	s := newSession(b.mixer, b.taps, h, buf, b.volume)
	b.taps.add(h, s.tap)
	b.mixer.Play(s.ctrl)

	log.WithField("track", id).Debugf("loaded %s, %d frames at %d Hz", path, buf.Len(), b.rate)
	return s, nil
}
