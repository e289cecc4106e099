package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hdxvis/internal/catalog"
	"hdxvis/internal/playback"
	"hdxvis/internal/render"
)

func newTestShell() (*shell, *fakePlayer, *bytes.Buffer) {
	p := &fakePlayer{}
	out := &bytes.Buffer{}
	return &shell{p: p, lib: testLibrary, latest: render.NewLatest(), out: out}, p, out
}

func TestShellTransport(t *testing.T) {
	sh, p, out := newTestShell()
	ctx := context.Background()

	for _, line := range []string{"open night_drive", "toggle", "seek 1:00", "toggle", "restart", "play amber_road", "stop"} {
		if err := sh.exec(ctx, line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}

	want := []string{"select night_drive", "resume", "seek 1m0s", "pause", "restart", "select amber_road", "resume", "teardown"}
	if got := p.callLog(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if !strings.Contains(out.String(), "Night Drive") {
		t.Fatalf("status lines missing the title:\n%s", out.String())
	}
}

func TestShellErrors(t *testing.T) {
	sh, _, _ := newTestShell()
	ctx := context.Background()

	if err := sh.exec(ctx, "open"); !errors.Is(err, errArg) {
		t.Fatalf("open without id: %v", err)
	}
	if err := sh.exec(ctx, "open nothing"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("open unknown: %v", err)
	}
	if err := sh.exec(ctx, "seek later"); !errors.Is(err, errArg) {
		t.Fatalf("bad seek: %v", err)
	}
	if err := sh.exec(ctx, "dance"); !errors.Is(err, errArg) {
		t.Fatalf("unknown command: %v", err)
	}
	if err := sh.exec(ctx, "quit"); !errors.Is(err, errQuit) {
		t.Fatalf("quit: %v", err)
	}
	if err := sh.exec(ctx, "   "); err != nil {
		t.Fatalf("blank line: %v", err)
	}
}

func TestShellList(t *testing.T) {
	sh, _, out := newTestShell()
	if err := sh.exec(context.Background(), "list"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "amber_road") || !strings.Contains(out.String(), "1:30") {
		t.Fatalf("list output:\n%s", out.String())
	}
}

func TestShellListQuery(t *testing.T) {
	sh, _, out := newTestShell()
	if err := sh.exec(context.Background(), "list night"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "night_drive") || strings.Contains(out.String(), "amber_road") {
		t.Fatalf("filtered list:\n%s", out.String())
	}

	out.Reset()
	if err := sh.exec(context.Background(), "list polka"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "no tracks") {
		t.Fatalf("empty search:\n%s", out.String())
	}
}

func TestShellWatchStopsOnCancel(t *testing.T) {
	sh, _, _ := newTestShell()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sh.exec(ctx, "watch 30") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch ignored cancellation")
	}
	if err := sh.exec(context.Background(), "watch -1"); !errors.Is(err, errArg) {
		t.Fatalf("negative watch: %v", err)
	}
}

func TestParsePosition(t *testing.T) {
	cases := map[string]time.Duration{
		"1500":  1500 * time.Millisecond,
		"0":     0,
		"2:05":  2*time.Minute + 5*time.Second,
		"0:59":  59 * time.Second,
		"1m30s": 90 * time.Second,
	}
	for in, want := range cases {
		got, err := parsePosition(in)
		if err != nil || got != want {
			t.Errorf("parsePosition(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"", "-5", "1:75", "soon", "-1s"} {
		if _, err := parsePosition(in); !errors.Is(err, errArg) {
			t.Errorf("parsePosition(%q) should fail", in)
		}
	}
}

func TestStatusLine(t *testing.T) {
	if got := statusLine(playback.Snapshot{}, ""); !strings.Contains(got, "no track") {
		t.Fatalf("empty status = %q", got)
	}

	s := playback.Snapshot{
		HasTrack: true,
		Playing:  true,
		TrackID:  "night_drive",
		Title:    "Night Drive",
		Position: 90 * time.Second,
		Duration: 3 * time.Minute,
	}
	got := statusLine(s, "▁▂▃")
	for _, part := range []string{"▶", "Night Drive", "1:30", "3:00", "▁▂▃"} {
		if !strings.Contains(got, part) {
			t.Errorf("status %q missing %q", got, part)
		}
	}
	if p := progress(s, 10); p != "[=====-----]" {
		t.Fatalf("progress = %q", p)
	}
	if p := progress(playback.Snapshot{HasTrack: true}, 4); p != "[----]" {
		t.Fatalf("zero duration progress = %q", p)
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.00 KB",
		5 * 1024 * 1024: "5.00 MB",
		3 << 30:         "3.00 GB",
	}
	for in, want := range cases {
		if got := formatSize(in); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", in, got, want)
		}
	}
}
