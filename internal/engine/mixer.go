package engine

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Mixer is the shared output every session plays into. Streamers handed to
// Play are driven with the mixer lock held.
type Mixer interface {
	Lock()
	Unlock()
	Play(s ...beep.Streamer)
}

type speakerMixer struct{}

func (speakerMixer) Lock()                   { speaker.Lock() }
func (speakerMixer) Unlock()                 { speaker.Unlock() }
func (speakerMixer) Play(s ...beep.Streamer) { speaker.Play(s...) }

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Speaker initialises the beep speaker once and returns it as a Mixer.
// Later calls ignore their arguments.
func Speaker(rate beep.SampleRate, latch time.Duration) (Mixer, error) {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(rate, rate.N(latch))
	})
	if speakerErr != nil {
		return nil, speakerErr
	}
	return speakerMixer{}, nil
}
