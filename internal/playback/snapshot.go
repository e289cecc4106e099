package playback

import (
	"encoding/json"
	"sync"
	"time"
)

// Snapshot is the UI-observable projection of the controller. It is never
// read back as a source of truth.
type Snapshot struct {
	HasTrack bool          `json:"has_track"`
	Playing  bool          `json:"playing"`
	TrackID  string        `json:"track_id,omitempty"`
	Title    string        `json:"title,omitempty"`
	Position time.Duration `json:"-"`
	Duration time.Duration `json:"-"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	return json.Marshal(struct {
		plain
		PositionMs int64 `json:"position_ms"`
		DurationMs int64 `json:"duration_ms"`
	}{
		plain:      plain(s),
		PositionMs: s.Position.Milliseconds(),
		DurationMs: s.Duration.Milliseconds(),
	})
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	var v struct {
		plain
		PositionMs int64 `json:"position_ms"`
		DurationMs int64 `json:"duration_ms"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Snapshot(v.plain)
	s.Position = time.Duration(v.PositionMs) * time.Millisecond
	s.Duration = time.Duration(v.DurationMs) * time.Millisecond
	return nil
}

// broadcaster fans snapshots out to subscribers without ever blocking the
// publisher. A full subscriber loses its oldest pending snapshot.
type broadcaster struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan Snapshot
	closed bool
}

func (b *broadcaster) subscribe(buffer int) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, max(buffer, 1))

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	if b.subs == nil {
		b.subs = make(map[int]chan Snapshot)
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

func (b *broadcaster) publish(s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
