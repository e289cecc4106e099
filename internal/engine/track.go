package engine

import (
	"github.com/faiface/beep"
)

// trackStreamer never ends on its own. Past the end of the track it reports
// completion once and plays silence until it is seeked back or released.
// All fields are guarded by the mixer lock.
type trackStreamer struct {
	src      beep.StreamSeeker
	finished bool
	released bool
	onEnd    func()
}

func (t *trackStreamer) Stream(samples [][2]float64) (int, bool) {
	if t.released {
		return 0, false
	}
	n := 0
	if !t.finished {
		n, _ = t.src.Stream(samples)
	}
	if n < len(samples) {
		clear(samples[n:])
		if !t.finished {
			t.finished = true
			t.onEnd()
		}
	}
	return len(samples), true
}

func (t *trackStreamer) Err() error { return t.src.Err() }

func (t *trackStreamer) seek(p int) error {
	p = max(0, min(p, t.src.Len()))
	if err := t.src.Seek(p); err != nil {
		return err
	}
	t.finished = false
	return nil
}
