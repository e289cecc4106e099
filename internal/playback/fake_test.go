package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hdxvis/internal/capture"
)

var errUnknownTrack = errors.New("unknown track")

// callLog records the calls of several fakes in the order they happen.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

// mark returns a position to pass to since.
func (l *callLog) mark() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func (l *callLog) since(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls[n:]...)
}

type fakeEngine struct {
	mu       sync.Mutex
	duration time.Duration
	handle   capture.Handle
	events   chan Event
	autoAck  bool
	trace    *callLog

	calls    []string
	seeks    []time.Duration
	stopped  bool
	released bool

	failPause error
	failPlay  error
	failSeek  error
}

func (e *fakeEngine) record(call string) {
	e.calls = append(e.calls, call)
	if call == "stop" || call == "release" {
		e.trace.add("engine " + call)
	}
}

func (e *fakeEngine) Duration() time.Duration { return e.duration }
func (e *fakeEngine) Position() time.Duration { return 0 }

func (e *fakeEngine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("play")
	return e.failPlay
}

func (e *fakeEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("pause")
	return e.failPause
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("stop")
	e.stopped = true
	return nil
}

func (e *fakeEngine) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("seek")
	if e.failSeek != nil {
		return e.failSeek
	}
	e.seeks = append(e.seeks, pos)
	if e.autoAck {
		e.events <- Event{Kind: EventSeekCompleted, Position: pos}
	}
	return nil
}

func (e *fakeEngine) Release() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("release")
	e.released = true
	return nil
}

func (e *fakeEngine) Events() <-chan Event         { return e.events }
func (e *fakeEngine) AudioSession() capture.Handle { return e.handle }

// ack acknowledges the most recent seek.
func (e *fakeEngine) ack() {
	e.mu.Lock()
	pos := e.seeks[len(e.seeks)-1]
	e.mu.Unlock()
	e.events <- Event{Kind: EventSeekCompleted, Position: pos}
}

func (e *fakeEngine) ackAt(pos time.Duration) {
	e.events <- Event{Kind: EventSeekCompleted, Position: pos}
}

func (e *fakeEngine) complete() {
	e.events <- Event{Kind: EventCompleted}
}

func (e *fakeEngine) count(call string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (e *fakeEngine) lastSeek() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seeks[len(e.seeks)-1]
}

func (e *fakeEngine) isReleased() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped && e.released
}

type fakeBackend struct {
	mu        sync.Mutex
	durations map[string]time.Duration
	manualAck bool
	loads     int
	engines   map[string]*fakeEngine
	trace     *callLog
}

func (b *fakeBackend) Load(id string) (Engine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.durations[id]
	if !ok {
		return nil, errUnknownTrack
	}
	b.loads++
	eng := &fakeEngine{
		duration: d,
		handle:   capture.Handle(b.loads),
		events:   make(chan Event, 8),
		autoAck:  !b.manualAck,
		trace:    b.trace,
	}
	if b.engines == nil {
		b.engines = make(map[string]*fakeEngine)
	}
	b.engines[id] = eng
	return eng, nil
}

func (b *fakeBackend) engine(id string) *fakeEngine {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engines[id]
}

func (b *fakeBackend) loadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loads
}

type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
	trace   *callLog
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.stopped.Store(true)
	m.trace.add("clock stop")
}

type tickerFactory struct {
	mu    sync.Mutex
	all   []*manualTicker
	trace *callLog
}

func (f *tickerFactory) New(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	// unbuffered: a send returns only once the loop has taken the tick
	t := &manualTicker{ch: make(chan time.Time), trace: f.trace}
	f.all = append(f.all, t)
	return t
}

func (f *tickerFactory) last() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.all) == 0 {
		return nil
	}
	return f.all[len(f.all)-1]
}

type fakeSub struct{ src *fakeSource }

func (s fakeSub) Unsubscribe() {
	s.src.mu.Lock()
	defer s.src.mu.Unlock()
	s.src.unsubscribes++
	s.src.trace.add("capture unsubscribe")
}

type fakeSource struct {
	mu           sync.Mutex
	sinks        []capture.FrameFunc
	handles      []capture.Handle
	unsubscribes int
	err          error
	trace        *callLog
}

func (s *fakeSource) CaptureSizeRange() (int, int) { return 128, 1024 }
func (s *fakeSource) MaxCaptureRate() int          { return 20000 }

func (s *fakeSource) Subscribe(h capture.Handle, _ capture.Options, sink capture.FrameFunc) (capture.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.sinks = append(s.sinks, sink)
	s.handles = append(s.handles, h)
	return fakeSub{src: s}, nil
}

func (s *fakeSource) lastSink() capture.FrameFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sinks[len(s.sinks)-1]
}

func (s *fakeSource) unsubscribed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribes
}

type frameCounter struct{ n atomic.Int64 }

func (r *frameCounter) OnFrame([]byte) { r.n.Add(1) }

type harness struct {
	t        *testing.T
	ctrl     *Controller
	backend  *fakeBackend
	tickers  *tickerFactory
	source   *fakeSource
	renderer *frameCounter
	trace    *callLog
}

const (
	trackA = "track_a"
	trackB = "track_b"
)

func newHarness(t *testing.T, manualAck bool) *harness {
	t.Helper()
	trace := &callLog{}
	h := &harness{
		t:     t,
		trace: trace,
		backend: &fakeBackend{
			durations: map[string]time.Duration{
				trackA: 180 * time.Second,
				trackB: 90 * time.Second,
			},
			manualAck: manualAck,
			trace:     trace,
		},
		tickers:  &tickerFactory{trace: trace},
		source:   &fakeSource{trace: trace},
		renderer: &frameCounter{},
	}
	h.ctrl = New(Options{
		Backend:   h.backend,
		Capture:   h.source,
		Renderer:  h.renderer,
		Interval:  time.Second,
		NewTicker: h.tickers.New,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go h.ctrl.Run(ctx)
	t.Cleanup(func() {
		_ = h.ctrl.Close()
		cancel()
	})
	return h
}

func (h *harness) selectTrack(id string) *fakeEngine {
	h.t.Helper()
	if err := h.ctrl.SelectTrack(Track{ID: id, Name: id}); err != nil {
		h.t.Fatalf("select %s: %v", id, err)
	}
	return h.backend.engine(id)
}

// tick delivers one tick to the running clock and waits for it to be handled.
func (h *harness) tick() {
	h.t.Helper()
	tk := h.tickers.last()
	if tk == nil {
		h.t.Fatal("no clock was started")
	}
	select {
	case tk.ch <- time.Now():
	case <-time.After(2 * time.Second):
		h.t.Fatal("tick not accepted")
	}
	h.ctrl.Snapshot()
}

// tryTick reports whether any ticker channel is still being read.
func (h *harness) tryTick() bool {
	tk := h.tickers.last()
	if tk == nil {
		return false
	}
	select {
	case tk.ch <- time.Now():
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func (h *harness) eventually(what string, cond func(Snapshot) bool) Snapshot {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := h.ctrl.Snapshot()
		if cond(snap) {
			return snap
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s, last snapshot %+v", what, snap)
		}
		time.Sleep(time.Millisecond)
	}
}

// drain waits until the loop has taken and handled every queued engine event.
func (h *harness) drain(eng *fakeEngine) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(eng.events) > 0 {
		if time.Now().After(deadline) {
			h.t.Fatal("engine events not consumed")
		}
		time.Sleep(time.Millisecond)
	}
	h.ctrl.Snapshot()
}

func (h *harness) waitPlaying() Snapshot {
	h.t.Helper()
	return h.eventually("playing", func(s Snapshot) bool { return s.Playing })
}

func (h *harness) play(id string) *fakeEngine {
	h.t.Helper()
	eng := h.selectTrack(id)
	if err := h.ctrl.Resume(); err != nil {
		h.t.Fatalf("resume: %v", err)
	}
	if eng.autoAck {
		h.waitPlaying()
	} else {
		eng.ack()
		h.waitPlaying()
	}
	return eng
}
