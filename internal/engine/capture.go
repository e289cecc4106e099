package engine

import (
	"fmt"
	"sync"
	"time"

	"hdxvis/internal/capture"
	"hdxvis/internal/codec"
	"hdxvis/pkg/spec"
)

// Taps is the capture source of a Backend: one tap per live audio session.
type Taps struct {
	mu   sync.Mutex
	taps map[capture.Handle]*tap
}

func newTaps() *Taps {
	return &Taps{taps: make(map[capture.Handle]*tap)}
}

func (t *Taps) add(h capture.Handle, tp *tap) {
	t.mu.Lock()
	t.taps[h] = tp
	t.mu.Unlock()
}

func (t *Taps) remove(h capture.Handle) {
	t.mu.Lock()
	delete(t.taps, h)
	t.mu.Unlock()
}

func (t *Taps) CaptureSizeRange() (int, int) {
	return spec.CaptureSizeMin, spec.CaptureSizeMax
}

func (t *Taps) MaxCaptureRate() int {
	return spec.CaptureRateMax
}

// Subscribe starts delivering waveform frames of opts.Size bytes to sink,
// opts.Rate times per thousand seconds.
func (t *Taps) Subscribe(h capture.Handle, opts capture.Options, sink capture.FrameFunc) (capture.Subscription, error) {
	if opts.FFT {
		return nil, capture.ErrFFTUnsupported
	}
	minSize, maxSize := t.CaptureSizeRange()
	if !opts.Waveform || opts.Size < minSize || opts.Size > maxSize || opts.Size&(opts.Size-1) != 0 ||
		opts.Rate <= 0 || opts.Rate > t.MaxCaptureRate() {
		return nil, fmt.Errorf("%w: %+v", capture.ErrInvalidOptions, opts)
	}

	t.mu.Lock()
	tp, ok := t.taps[h]
	t.mu.Unlock()
	if !ok {
		return nil, capture.ErrUnknownSession
	}

	s := &subscription{
		tap:    tp,
		sink:   sink,
		mono:   make([]float64, opts.Size),
		frame:  make([]byte, opts.Size),
		period: time.Duration(int64(time.Second) * 1000 / int64(opts.Rate)),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return s, nil
}

type subscription struct {
	tap    *tap
	sink   capture.FrameFunc
	mono   []float64
	frame  []byte
	period time.Duration

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func (s *subscription) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.tap.latest(s.mono)
			codec.WaveformFrame(s.frame, s.mono)
			s.sink(s.frame)
		}
	}
}

// Unsubscribe stops delivery and waits for an in-flight frame to finish.
func (s *subscription) Unsubscribe() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
