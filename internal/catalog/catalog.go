// Package catalog lists the wav tracks of the music library.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"hdxvis/internal/filesystem"
	"hdxvis/internal/log"
	"hdxvis/internal/playback"
	"hdxvis/pkg/spec"

	"github.com/go-audio/wav"
	"github.com/samber/lo"
)

var ErrNotFound = errors.New("catalog: track not found")

type Entry struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Path     string        `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Track is the entry as the controller sees it.
func (e Entry) Track() playback.Track {
	return playback.Track{ID: e.ID, Name: e.Name}
}

type Catalog struct {
	root    string
	entries []Entry
	byID    map[string]Entry
}

// Scan walks root for wav files. Unreadable files are skipped; a missing
// root yields an empty catalog.
func Scan(root string) (*Catalog, error) {
	c := &Catalog{root: root, byID: make(map[string]Entry)}

	err := filesystem.API().Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root && errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), spec.TrackExt) {
			return nil
		}

		id := TrackID(path)
		if prev, dup := c.byID[id]; dup {
			log.WithField("track", id).Warnf("%s shadowed by %s", path, prev.Path)
			return nil
		}

		d, err := probe(path)
		if err != nil {
			log.WithField("track", id).WithError(err).Warn("skipping unreadable track")
			return nil
		}

		e := Entry{ID: id, Name: DisplayName(path), Path: path, Duration: d}
		c.byID[id] = e
		c.entries = append(c.entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	slices.SortFunc(c.entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return c, nil
}

func probe(path string) (time.Duration, error) {
	h, err := Inspect(path)
	return h.Duration, err
}

// Header describes the format of a track file.
type Header struct {
	SampleRate int
	BitDepth   int
	Channels   int
	Size       int64
	Duration   time.Duration
}

// Inspect reads the wav header of path.
func Inspect(path string) (Header, error) {
	f, err := filesystem.API().Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Header{}, err
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Header{}, errors.New("not a pcm wav file")
	}
	d, err := dec.Duration()
	if err != nil {
		return Header{}, err
	}
	return Header{
		SampleRate: int(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
		Channels:   int(dec.NumChans),
		Size:       info.Size(),
		Duration:   d,
	}, nil
}

// TrackID is the file name without directory or extension.
func TrackID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DisplayName turns a file name into a title: vocal_jazz_2012.wav becomes
// "Vocal Jazz 2012".
func DisplayName(path string) string {
	words := strings.Fields(strings.ReplaceAll(TrackID(path), "_", " "))
	return strings.Join(lo.Map(words, func(w string, _ int) string {
		return lo.Capitalize(w)
	}), " ")
}

func (c *Catalog) Root() string { return c.root }

// List returns the entries sorted by display name.
func (c *Catalog) List() []Entry {
	return slices.Clone(c.entries)
}

func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) Entry(id string) (Entry, error) {
	e, ok := c.byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

func (c *Catalog) Lookup(id string) (playback.Track, error) {
	e, err := c.Entry(id)
	if err != nil {
		return playback.Track{}, err
	}
	return e.Track(), nil
}

// Path resolves a track id for the engine.
func (c *Catalog) Path(id string) (string, error) {
	e, err := c.Entry(id)
	if err != nil {
		return "", err
	}
	return e.Path, nil
}

// Search returns entries whose id or name contains query, ignoring case.
func (c *Catalog) Search(query string) []Entry {
	q := strings.ToLower(query)
	return lo.Filter(c.entries, func(e Entry, _ int) bool {
		return strings.Contains(strings.ToLower(e.ID), q) || strings.Contains(strings.ToLower(e.Name), q)
	})
}
