/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hdxvis/internal/catalog"
	"hdxvis/internal/config"
	"hdxvis/internal/engine"
	"hdxvis/internal/log"
	"hdxvis/internal/playback"
	"hdxvis/internal/render"
	"hdxvis/internal/state"

	"github.com/faiface/beep"
	"github.com/spf13/viper"
)

// player is the part of the playback controller the control surfaces use.
type player interface {
	SelectTrack(t playback.Track) error
	Pause() error
	Resume() error
	SeekTo(pos time.Duration) error
	Restart() error
	Teardown() error
	Restore(t playback.Track, pos time.Duration) error
	Snapshot() playback.Snapshot
	Subscribe(buffer int) (<-chan playback.Snapshot, func())
}

type library interface {
	List() []catalog.Entry
	Search(query string) []catalog.Entry
	Lookup(id string) (playback.Track, error)
}

func run(ctx context.Context, open string) error {
	lib, err := catalog.Scan(viper.GetString(config.LibraryPath))
	if err != nil {
		return err
	}
	log.Infof("library %s: %d tracks", lib.Root(), lib.Len())

	rate := beep.SampleRate(viper.GetInt(config.AudioSampleRate))
	mixer, err := engine.Speaker(rate, viper.GetDuration(config.AudioBuffer))
	if err != nil {
		return fmt.Errorf("speaker: %w", err)
	}
	backend := engine.NewBackend(engine.Options{
		Resolver:   lib,
		Mixer:      mixer,
		SampleRate: rate,
		Volume:     viper.GetFloat64(config.AudioVolume),
	})

	latest := render.NewLatest()
	ctrl := playback.New(playback.Options{
		Backend:  backend,
		Capture:  backend.Capture(),
		Renderer: latest,
		Interval: config.ClockIntervalValue(),
	})

	stopLoop := startLoop(ctx, ctrl)
	defer stopLoop()

	store := state.New(viper.GetString(config.StatePath))
	restore(ctrl, lib, store, open)
	finishState := followState(store, ctrl)

	if path := viper.GetString(config.ControlSocket); path != "" {
		srv := newServer(ctrl, lib)
		ln, err := srv.listen(path)
		if err != nil {
			log.WithError(err).Warn("control socket disabled")
		} else {
			go srv.serve(ctx, ln)
		}
	}

	sh, err := newShell(ctrl, lib, latest)
	if err != nil {
		finishState()
		return err
	}
	shellErr := sh.run(ctx)

	finishState()
	if err := stopLoop(); err != nil {
		return err
	}
	return shellErr
}

// startLoop runs the controller until the returned stop is called. A
// cancelled ctx does not reach the loop: the session has to outlive the
// signal until its state is saved.
func startLoop(ctx context.Context, ctrl *playback.Controller) (stop func() error) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	var (
		once sync.Once
		err  error
	)
	return func() error {
		once.Do(func() {
			cancel()
			if e := <-done; e != nil && !errors.Is(e, context.Canceled) {
				err = e
			}
		})
		return err
	}
}

// followState keeps store in step with p. The returned finish stops
// following and saves the live snapshot; call it before stopping the loop.
func followState(store *state.Store, p player) (finish func()) {
	snaps, unsubscribe := p.Subscribe(16)
	saved := make(chan struct{})
	go func() {
		store.Follow(snaps)
		close(saved)
	}()

	return func() {
		unsubscribe()
		<-saved
		if err := store.Save(p.Snapshot()); err != nil {
			log.WithError(err).Warn("saving playback state")
		}
	}
}

// restore reopens the requested track, or the saved one when restoring is on.
func restore(p player, lib library, store *state.Store, open string) {
	if open != "" {
		t, err := lib.Lookup(open)
		if err == nil {
			err = p.SelectTrack(t)
		}
		if err != nil {
			log.WithField("track", open).WithError(err).Warn("cannot open track")
		}
		return
	}
	if !viper.GetBool(config.StateRestore) {
		return
	}

	saved, err := store.Load()
	if err != nil || saved.Empty() {
		if err != nil {
			log.WithError(err).Warn("reading saved state")
		}
		return
	}
	t, err := lib.Lookup(saved.TrackID)
	if err != nil {
		log.WithField("track", saved.TrackID).Info("saved track no longer in library")
		return
	}
	if err := p.Restore(t, saved.Position()); err != nil {
		log.WithField("track", saved.TrackID).WithError(err).Warn("restore failed")
	}
}
