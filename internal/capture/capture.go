// Package capture hands time-domain amplitude frames from a capture source
// to a renderer.
package capture

import "errors"

var (
	ErrFFTUnsupported    = errors.New("capture: frequency-domain capture is not supported")
	ErrUnknownSession    = errors.New("capture: unknown audio session")
	ErrAlreadySubscribed = errors.New("capture: bridge already subscribed")
	ErrInvalidOptions    = errors.New("capture: invalid capture options")
)

// Handle identifies the live audio session a capture attaches to.
type Handle int

// Options describes one capture subscription. Rate is in milliHertz.
type Options struct {
	Size     int
	Rate     int
	Waveform bool
	FFT      bool
}

// FrameFunc receives one frame of unsigned 8-bit samples. The slice is only
// valid for the duration of the call.
type FrameFunc func(samples []byte)

// Subscription is a live capture registration.
type Subscription interface {
	Unsubscribe()
}

// Source emits periodic amplitude frames for an audio session while subscribed.
type Source interface {
	CaptureSizeRange() (min, max int)
	MaxCaptureRate() int
	Subscribe(h Handle, opts Options, sink FrameFunc) (Subscription, error)
}

// Renderer consumes frames. OnFrame must not block.
type Renderer interface {
	OnFrame(samples []byte)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(samples []byte)

func (f RendererFunc) OnFrame(samples []byte) { f(samples) }
