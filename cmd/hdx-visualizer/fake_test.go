package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"hdxvis/internal/catalog"
	"hdxvis/internal/playback"
)

type fakePlayer struct {
	mu    sync.Mutex
	snap  playback.Snapshot
	calls []string
	err   error
	subs  []chan playback.Snapshot
}

func (p *fakePlayer) do(call string, fn func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	if p.err != nil {
		return p.err
	}
	if fn != nil {
		fn()
	}
	return nil
}

func (p *fakePlayer) SelectTrack(t playback.Track) error {
	return p.do("select "+t.ID, func() {
		p.snap = playback.Snapshot{HasTrack: true, TrackID: t.ID, Title: t.Name, Duration: 3 * time.Minute}
	})
}

func (p *fakePlayer) Pause() error {
	return p.do("pause", func() { p.snap.Playing = false })
}

func (p *fakePlayer) Resume() error {
	return p.do("resume", func() { p.snap.Playing = p.snap.HasTrack })
}

func (p *fakePlayer) SeekTo(pos time.Duration) error {
	return p.do(fmt.Sprintf("seek %v", pos), func() { p.snap.Position = pos })
}

func (p *fakePlayer) Restart() error {
	return p.do("restart", func() { p.snap.Position = 0 })
}

func (p *fakePlayer) Teardown() error {
	return p.do("teardown", func() { p.snap = playback.Snapshot{} })
}

func (p *fakePlayer) Restore(t playback.Track, pos time.Duration) error {
	return p.do(fmt.Sprintf("restore %s %v", t.ID, pos), func() {
		p.snap = playback.Snapshot{HasTrack: true, TrackID: t.ID, Position: pos}
	})
}

func (p *fakePlayer) Snapshot() playback.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

func (p *fakePlayer) Subscribe(buffer int) (<-chan playback.Snapshot, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan playback.Snapshot, buffer)
	p.subs = append(p.subs, ch)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, c := range p.subs {
				if c == ch {
					p.subs = append(p.subs[:i], p.subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
}

func (p *fakePlayer) publish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		ch <- p.snap
	}
}

func (p *fakePlayer) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

type fakeLibrary []catalog.Entry

func (l fakeLibrary) List() []catalog.Entry { return l }

func (l fakeLibrary) Search(query string) []catalog.Entry {
	var out []catalog.Entry
	for _, e := range l {
		if strings.Contains(strings.ToLower(e.ID+" "+e.Name), strings.ToLower(query)) {
			out = append(out, e)
		}
	}
	return out
}

func (l fakeLibrary) Lookup(id string) (playback.Track, error) {
	for _, e := range l {
		if e.ID == id {
			return e.Track(), nil
		}
	}
	return playback.Track{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
}

var testLibrary = fakeLibrary{
	{ID: "night_drive", Name: "Night Drive", Duration: 3 * time.Minute},
	{ID: "amber_road", Name: "Amber Road", Duration: 90 * time.Second},
}
