package capture

import "sync"

// Bridge forwards frames from one source subscription to a renderer.
// A bridge belongs to exactly one playback session.
type Bridge struct {
	renderer Renderer

	mu     sync.RWMutex
	sub    Subscription
	active bool
}

// NewBridge returns an idle bridge for r.
func NewBridge(r Renderer) *Bridge {
	return &Bridge{renderer: r}
}

// Subscribe attaches to src for session h at the source's maximum capture
// size and half its maximum rate, waveform only.
func (b *Bridge) Subscribe(src Source, h Handle) error {
	_, maxSize := src.CaptureSizeRange()
	opts := Options{
		Size:     maxSize,
		Rate:     src.MaxCaptureRate() / 2,
		Waveform: true,
		FFT:      false,
	}

	b.mu.Lock()
	if b.active || b.sub != nil {
		b.mu.Unlock()
		return ErrAlreadySubscribed
	}
	b.active = true
	b.mu.Unlock()

	// the source may start delivering before Subscribe returns
	sub, err := src.Subscribe(h, opts, b.OnFrame)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.active = false
		return err
	}
	b.sub = sub
	return nil
}

// OnFrame is the capture callback. It forwards samples unmodified and
// returns; nothing is copied or retained.
func (b *Bridge) OnFrame(samples []byte) {
	b.mu.RLock()
	if b.active {
		b.renderer.OnFrame(samples)
	}
	b.mu.RUnlock()
}

// Active reports whether frames are being forwarded.
func (b *Bridge) Active() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// Unsubscribe stops forwarding and releases the source subscription. Once it
// returns no frame reaches the renderer. Safe to call when never subscribed.
func (b *Bridge) Unsubscribe() {
	b.mu.Lock()
	b.active = false
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
