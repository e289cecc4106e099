// Package render draws capture frames for the terminal.
package render

import (
	"strings"
	"sync"

	"hdxvis/internal/codec"
	"hdxvis/pkg/spec"
)

var bars = []rune(" ▁▂▃▄▅▆▇█")

// Latest keeps the newest frame. OnFrame only copies into a buffer
// allocated up front, so it is safe on the capture path.
type Latest struct {
	mu     sync.Mutex
	frame  []byte
	n      int
	frames uint64
}

func NewLatest() *Latest {
	return &Latest{frame: make([]byte, spec.CaptureSizeMax)}
}

func (l *Latest) OnFrame(samples []byte) {
	l.mu.Lock()
	l.n = copy(l.frame, samples)
	l.frames++
	l.mu.Unlock()
}

// Frames is the number of frames received.
func (l *Latest) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Snapshot returns a copy of the newest frame.
func (l *Latest) Snapshot() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.frame[:l.n]...)
}

// Sparkline renders the newest frame as width bars of its level envelope.
func (l *Latest) Sparkline(width int) string {
	return Sparkline(l.Snapshot(), width)
}

// Reset forgets the held frame.
func (l *Latest) Reset() {
	l.mu.Lock()
	l.n = 0
	l.mu.Unlock()
}

func Sparkline(frame []byte, width int) string {
	if width <= 0 {
		return ""
	}
	env := codec.Envelope(frame, width)
	var b strings.Builder
	for _, v := range env {
		b.WriteRune(bars[int(v)*(len(bars)-1)/255])
	}
	for range width - len(env) {
		b.WriteRune(bars[0])
	}
	return b.String()
}
