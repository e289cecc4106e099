/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"strings"

	"hdxvis/internal/playback"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#cba6f7")
	faint  = lipgloss.Color("#6c7086")
	green  = lipgloss.Color("#a6e3a1")
	red    = lipgloss.Color("#f38ba8")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	faintStyle = lipgloss.NewStyle().Foreground(faint)
	waveStyle  = lipgloss.NewStyle().Foreground(green)
	errStyle   = lipgloss.NewStyle().Foreground(red)
)

const (
	barWidth  = 24
	waveWidth = 32
)

// statusLine renders one line: state, title, time, progress and waveform.
func statusLine(s playback.Snapshot, wave string) string {
	if !s.HasTrack {
		return faintStyle.Render("■ no track")
	}

	icon := "⏸"
	if s.Playing {
		icon = "▶"
	}
	title := s.Title
	if title == "" {
		title = s.TrackID
	}

	return strings.Join([]string{
		icon,
		titleStyle.Render(title),
		clock(s.Position) + faintStyle.Render(" / "+clock(s.Duration)),
		progress(s, barWidth),
		waveStyle.Render(wave),
	}, " ")
}

func progress(s playback.Snapshot, width int) string {
	filled := 0
	if s.Duration > 0 {
		filled = int(int64(width) * int64(s.Position) / int64(s.Duration))
	}
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
