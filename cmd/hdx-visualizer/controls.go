/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hdxvis/internal/catalog"
	"hdxvis/internal/playback"
	"hdxvis/pkg/spec"
)

var errArg = errors.New("bad argument")

// errCode maps an error to the token sent as "ERR <CODE>".
func errCode(err error) string {
	var (
		loadErr *playback.LoadError
		playErr *playback.PlaybackError
	)
	switch {
	case errors.Is(err, errArg):
		return spec.ErrArg
	case errors.Is(err, playback.ErrNoSession):
		return spec.ErrNoTrack
	case errors.Is(err, catalog.ErrNotFound):
		return spec.ErrTrackNotFound
	case errors.As(err, &loadErr):
		return spec.ErrLoadFailed
	case errors.As(err, &playErr):
		return spec.ErrPlayback
	default:
		return spec.ErrInternal
	}
}

func openTrack(p player, lib library, id string) error {
	t, err := lib.Lookup(id)
	if err != nil {
		return err
	}
	return p.SelectTrack(t)
}

func toggle(p player) error {
	if p.Snapshot().Playing {
		return p.Pause()
	}
	return p.Resume()
}

// parsePosition accepts milliseconds, mm:ss or a Go duration.
func parsePosition(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond, nil
	}
	if m, sec, ok := strings.Cut(s, ":"); ok {
		mm, err1 := strconv.Atoi(m)
		ss, err2 := strconv.Atoi(sec)
		if err1 == nil && err2 == nil && mm >= 0 && ss >= 0 && ss < 60 {
			return time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second, nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d, nil
	}
	return 0, fmt.Errorf("%w: position %q", errArg, s)
}

// clock formats d as m:ss.
func clock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
