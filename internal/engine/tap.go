package engine

import (
	"sync"

	"github.com/faiface/beep"
)

// tap passes audio through while keeping the last samples as a mono mix.
type tap struct {
	s beep.Streamer

	mu   sync.Mutex
	ring []float64
	pos  int
}

func newTap(s beep.Streamer, size int) *tap {
	return &tap{s: s, ring: make([]float64, size)}
}

func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.mu.Lock()
	for i := range n {
		t.ring[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % len(t.ring)
	}
	t.mu.Unlock()
	return n, ok
}

func (t *tap) Err() error { return t.s.Err() }

// latest copies the newest len(dst) samples into dst, oldest first.
func (t *tap) latest(dst []float64) {
	size := len(t.ring)
	n := min(len(dst), size)
	t.mu.Lock()
	start := (t.pos - n + size) % size
	for i := range n {
		dst[i] = t.ring[(start+i)%size]
	}
	t.mu.Unlock()
}
