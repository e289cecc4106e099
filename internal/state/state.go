// Package state keeps the last track and position across restarts.
package state

import (
	"time"

	"hdxvis/internal/filesystem"
	"hdxvis/internal/log"
	"hdxvis/internal/playback"

	"github.com/metafates/gache"
)

// Saved is the persisted pair. A zero value means nothing was saved.
type Saved struct {
	TrackID    string `json:"track_id"`
	PositionMs int64  `json:"position_ms"`
}

func (s Saved) Position() time.Duration {
	return time.Duration(s.PositionMs) * time.Millisecond
}

func (s Saved) Empty() bool { return s.TrackID == "" }

type Store struct {
	cache *gache.Cache[*Saved]
}

func New(path string) *Store {
	return &Store{
		cache: gache.New[*Saved](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

func (s *Store) Load() (Saved, error) {
	saved, expired, err := s.cache.Get()
	if err != nil {
		return Saved{}, err
	}
	if expired || saved == nil {
		return Saved{}, nil
	}
	return *saved, nil
}

// Save records the snapshot's track and position. A snapshot without a
// track clears the record.
func (s *Store) Save(snap playback.Snapshot) error {
	if !snap.HasTrack {
		return s.cache.Set(&Saved{})
	}
	return s.cache.Set(&Saved{
		TrackID:    snap.TrackID,
		PositionMs: snap.Position.Milliseconds(),
	})
}

// Follow saves snapshots from ch until it is closed. Ticks while playing
// are skipped; pauses, seeks while paused and track changes are written.
func (s *Store) Follow(ch <-chan playback.Snapshot) {
	var last playback.Snapshot
	for snap := range ch {
		if snap.Playing && snap.TrackID == last.TrackID && last.Playing {
			last = snap
			continue
		}
		last = snap
		if err := s.Save(snap); err != nil {
			log.WithError(err).Warn("saving playback state")
		}
	}
}
