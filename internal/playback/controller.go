/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package playback keeps the engine position, the position clock and the
// capture stream of the loaded track consistent.
//
// Every transition runs on the goroutine executing Controller.Run. Public
// methods hand a request to that loop and wait for its result; clock ticks
// and engine events are received by the same loop, so none of them can
// interleave with a transition.
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"hdxvis/internal/capture"
	"hdxvis/internal/log"
	"hdxvis/pkg/spec"

	"github.com/sirupsen/logrus"
)

// Options wires a Controller.
type Options struct {
	Backend Backend
	// Capture and Renderer may be nil, in which case no frames are captured.
	Capture  capture.Source
	Renderer capture.Renderer
	// Interval defaults to spec.ClockInterval.
	Interval  time.Duration
	NewTicker TickerFunc
}

type request struct {
	fn    func() error
	reply chan error
}

type Controller struct {
	backend  Backend
	source   capture.Source
	renderer capture.Renderer
	interval time.Duration
	tickers  TickerFunc

	// owned by the loop
	session *session

	inbox chan request
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
	sinks broadcaster
}

func New(opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = spec.ClockInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	return &Controller{
		backend:  opts.Backend,
		source:   opts.Capture,
		renderer: opts.Renderer,
		interval: opts.Interval,
		tickers:  opts.NewTicker,
		inbox:    make(chan request),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run processes requests, ticks and engine events until ctx is done or
// Close is called. The loaded session is torn down before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.sinks.close()
	defer c.teardown()

	for {
		var (
			tick   <-chan time.Time
			events <-chan Event
		)
		if s := c.session; s != nil {
			tick = s.clock.C()
			events = s.events
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.quit:
			return nil
		case req := <-c.inbox:
			req.reply <- req.fn()
		case <-tick:
			c.onTick()
		case ev, ok := <-events:
			if !ok {
				c.logger().Warn("engine event stream closed")
				c.session.events = nil
				continue
			}
			c.onEvent(ev)
		}
	}
}

// Close tears down the session and stops the loop. It waits for Run to return.
func (c *Controller) Close() error {
	c.once.Do(func() { close(c.quit) })
	<-c.done
	return nil
}

// Subscribe returns a channel receiving a snapshot after every transition
// and tick, and a function to cancel it. Publishing never blocks the loop;
// a subscriber that falls behind loses its oldest snapshots.
func (c *Controller) Subscribe(buffer int) (<-chan Snapshot, func()) {
	return c.sinks.subscribe(buffer)
}

func (c *Controller) do(fn func() error) error {
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case c.inbox <- req:
	case <-c.done:
		return ErrControllerClosed
	}
	return <-req.reply
}

// SelectTrack loads t and makes it the current session, paused at zero.
// Selecting the loaded track again does nothing.
func (c *Controller) SelectTrack(t Track) error {
	return c.do(func() error { return c.selectTrack(t) })
}

func (c *Controller) Pause() error {
	return c.do(c.pause)
}

// Resume seeks the engine to the current position and starts playback once
// the engine acknowledges the seek.
func (c *Controller) Resume() error {
	return c.do(c.resume)
}

// SeekTo moves to pos, clamped to the track duration.
func (c *Controller) SeekTo(pos time.Duration) error {
	return c.do(func() error { return c.seekTo(pos) })
}

// Restart goes back to zero, resuming if the track was playing.
func (c *Controller) Restart() error {
	return c.do(func() error { return c.seekTo(0) })
}

// Teardown releases the current session. It is a no-op without one.
func (c *Controller) Teardown() error {
	return c.do(c.teardown)
}

// Restore reopens a saved track and places it, paused, at pos. A track
// that is already loaded and playing is paused first.
func (c *Controller) Restore(t Track, pos time.Duration) error {
	return c.do(func() error {
		if err := c.selectTrack(t); err != nil {
			return err
		}
		if c.session.active() {
			if err := c.pause(); err != nil {
				return err
			}
		}
		return c.seekTo(pos)
	})
}

// Snapshot returns the current projection.
func (c *Controller) Snapshot() Snapshot {
	var snap Snapshot
	if err := c.do(func() error {
		snap = c.snapshot()
		return nil
	}); err != nil {
		return Snapshot{}
	}
	return snap
}

func (c *Controller) snapshot() Snapshot {
	if c.session == nil {
		return Snapshot{}
	}
	return c.session.snapshot()
}

func (c *Controller) publish() {
	c.sinks.publish(c.snapshot())
}

func (c *Controller) logger() *logrus.Entry {
	if s := c.session; s != nil {
		return log.WithFields(logrus.Fields{"session": s.id, "track": s.track.ID})
	}
	return log.WithField("session", "")
}

func (c *Controller) fail(op string, err error) error {
	perr := &PlaybackError{Op: op, Err: err}
	c.logger().WithError(err).Warnf("%s rejected by engine", op)
	return perr
}

func (c *Controller) selectTrack(t Track) error {
	if c.session != nil && c.session.track.ID == t.ID {
		return nil
	}
	if c.backend == nil {
		return &LoadError{TrackID: t.ID, Err: errors.New("no backend")}
	}

	eng, err := c.backend.Load(t.ID)
	if err != nil {
		return &LoadError{TrackID: t.ID, Err: err}
	}

	var bridge *capture.Bridge
	if c.source != nil && c.renderer != nil {
		bridge = capture.NewBridge(c.renderer)
		if err := bridge.Subscribe(c.source, eng.AudioSession()); err != nil {
			if rerr := eng.Release(); rerr != nil {
				log.WithField("track", t.ID).WithError(rerr).Warn("release after failed capture subscribe")
			}
			return &LoadError{TrackID: t.ID, Err: err}
		}
	} else {
		bridge = capture.NewBridge(capture.RendererFunc(func([]byte) {}))
	}

	if err := c.release(); err != nil {
		c.logger().WithError(err).Warn("previous session released with errors")
	}

	c.session = newSession(t, eng, bridge, NewClock(c.tickers))
	c.logger().WithField("duration", c.session.duration).Info("track loaded")
	c.publish()
	return nil
}

func (c *Controller) pause() error {
	s := c.session
	if s == nil {
		return ErrNoSession
	}
	if s.pending {
		// the engine never started, only the acknowledgement is dropped
		s.pending = false
		return nil
	}
	if !s.playing {
		return nil
	}

	if err := s.engine.Pause(); err != nil {
		return c.fail("pause", err)
	}
	s.clock.Stop()
	s.playing = false
	c.publish()
	return nil
}

func (c *Controller) resume() error {
	s := c.session
	if s == nil {
		return ErrNoSession
	}
	if s.active() {
		return nil
	}
	return c.requestSeek(s)
}

// requestSeek asks the engine to land on the current position. Play and the
// clock start only in onSeekCompleted.
func (c *Controller) requestSeek(s *session) error {
	if err := s.engine.Seek(s.position); err != nil {
		return c.fail("seek", err)
	}
	s.pending = true
	s.target = s.position
	return nil
}

func (c *Controller) seekTo(pos time.Duration) error {
	s := c.session
	if s == nil {
		return ErrNoSession
	}

	if !s.active() {
		s.setPosition(pos)
		c.publish()
		return nil
	}

	if s.playing {
		if err := s.engine.Pause(); err != nil {
			return c.fail("pause", err)
		}
	}
	s.clock.Stop()
	s.playing = false
	s.pending = false
	s.setPosition(pos)
	c.publish()
	return c.requestSeek(s)
}

func (c *Controller) teardown() error {
	if c.session == nil {
		return nil
	}
	err := c.release()
	c.publish()
	return err
}

// release discards the session in the order clock, capture, engine. Engine
// errors are reported but the session is gone either way.
func (c *Controller) release() error {
	s := c.session
	if s == nil {
		return nil
	}
	c.session = nil

	s.clock.Stop()
	s.bridge.Unsubscribe()

	var errs []error
	if err := s.engine.Stop(); err != nil {
		errs = append(errs, &PlaybackError{Op: "stop", Err: err})
	}
	if err := s.engine.Release(); err != nil {
		errs = append(errs, &PlaybackError{Op: "release", Err: err})
	}
	log.WithFields(logrus.Fields{"session": s.id, "track": s.track.ID}).Info("session released")
	return errors.Join(errs...)
}

func (c *Controller) onTick() {
	s := c.session
	if s == nil || !s.clock.Running() || !s.playing {
		id := ""
		if s != nil {
			id = s.id
		}
		log.WithError(&ClockRaceError{Session: id}).Error("tick ignored")
		return
	}

	s.setPosition(s.position + s.clock.Interval())
	if s.position == s.duration {
		// display clamp only, the engine reports the real end
		s.clock.Stop()
	}
	c.publish()
}

func (c *Controller) onEvent(ev Event) {
	switch ev.Kind {
	case EventSeekCompleted:
		c.onSeekCompleted(ev.Position)
	case EventCompleted:
		c.onCompletion()
	default:
		c.logger().Warnf("unknown engine event %d", ev.Kind)
	}
}

func (c *Controller) onSeekCompleted(pos time.Duration) {
	s := c.session
	if !s.pending || pos != s.target {
		c.logger().Debugf("stale seek acknowledgement at %v", pos)
		return
	}
	s.pending = false

	if err := s.engine.Play(); err != nil {
		_ = c.fail("play", err)
		return
	}
	s.clock.Start(c.interval)
	s.playing = true
	c.publish()
}

func (c *Controller) onCompletion() {
	s := c.session
	if s.pending {
		// queued before the seek now in flight, which rewound the engine
		c.logger().Debug("completion superseded by seek")
		return
	}
	s.clock.Stop()
	s.pending = false
	if err := s.engine.Pause(); err != nil {
		_ = c.fail("pause", err)
	}
	s.playing = false
	s.position = 0
	c.logger().Debug("playthrough completed")
	c.publish()
}
