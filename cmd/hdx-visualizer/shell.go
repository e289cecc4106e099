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
	"io"
	"strings"
	"time"

	"hdxvis/internal/catalog"
	"hdxvis/internal/render"

	"github.com/chzyer/readline"
	"github.com/samber/lo"
)

const (
	prompt        = "hdx> "
	watchInterval = 250 * time.Millisecond
)

var errQuit = errors.New("quit")

var shellHelp = `commands:
  list [query]       tracks in the library, or those matching query
  open <id>          load a track, paused at 0:00
  play [id]          resume, or open and play
  pause | toggle     pause, or switch between play and pause
  seek <pos>         jump to ms, m:ss or 1m30s
  restart            back to 0:00
  stop               unload the track
  status             show the status line
  watch [seconds]    refresh the status line for a while
  quit`

type shell struct {
	p      player
	lib    library
	latest *render.Latest
	rl     *readline.Instance
	out    io.Writer
}

func newShell(p player, lib library, latest *render.Latest) (*shell, error) {
	sh := &shell{p: p, lib: lib, latest: latest}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, err
	}
	sh.rl = rl
	sh.out = rl.Stdout()
	return sh, nil
}

func (sh *shell) completer() *readline.PrefixCompleter {
	ids := readline.PcItemDynamic(func(string) []string {
		return lo.Map(sh.lib.List(), func(e catalog.Entry, _ int) string { return e.ID })
	})
	return readline.NewPrefixCompleter(
		readline.PcItem("list"),
		readline.PcItem("open", ids),
		readline.PcItem("play", ids),
		readline.PcItem("pause"),
		readline.PcItem("toggle"),
		readline.PcItem("seek"),
		readline.PcItem("restart"),
		readline.PcItem("stop"),
		readline.PcItem("status"),
		readline.PcItem("watch"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

func (sh *shell) run(ctx context.Context) error {
	defer sh.rl.Close()
	go func() {
		<-ctx.Done()
		sh.rl.Close()
	}()

	fmt.Fprintf(sh.out, "%s\n%s %s\n", about(), developer_title, developer_subtitle)
	fmt.Fprintln(sh.out, `type "help" for commands`)
	fmt.Fprintln(sh.out, sh.status())

	for {
		line, err := sh.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if err != nil {
			return nil
		}

		if err := sh.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(sh.out, errStyle.Render(fmt.Sprintf(" [!] %v (%s)", err, errCode(err))))
		}
	}
}

func (sh *shell) status() string {
	return statusLine(sh.p.Snapshot(), sh.latest.Sparkline(waveWidth))
}

// exec runs one shell line.
func (sh *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	arg := strings.Join(args, " ")

	var err error
	switch cmd {
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "list", "ls":
		entries := sh.lib.List()
		if arg != "" {
			entries = sh.lib.Search(arg)
		}
		if len(entries) == 0 {
			fmt.Fprintln(sh.out, faintStyle.Render("  no tracks"))
		}
		for _, e := range entries {
			fmt.Fprintf(sh.out, "  %-24s %-32s %s\n", e.ID, titleStyle.Render(e.Name), clock(e.Duration))
		}
		return nil
	case "status":
		fmt.Fprintln(sh.out, sh.status())
		return nil
	case "watch":
		return sh.watch(ctx, arg)
	case "open":
		if arg == "" {
			return fmt.Errorf("%w: open needs a track id", errArg)
		}
		err = openTrack(sh.p, sh.lib, arg)
		if err == nil {
			sh.latest.Reset()
		}
	case "play":
		if arg != "" {
			if err = openTrack(sh.p, sh.lib, arg); err != nil {
				return err
			}
			sh.latest.Reset()
		}
		err = sh.p.Resume()
	case "pause":
		err = sh.p.Pause()
	case "toggle", "t":
		err = toggle(sh.p)
	case "seek":
		pos, perr := parsePosition(arg)
		if perr != nil {
			return perr
		}
		err = sh.p.SeekTo(pos)
	case "restart":
		err = sh.p.Restart()
	case "stop":
		err = sh.p.Teardown()
		sh.latest.Reset()
	default:
		return fmt.Errorf("%w: unknown command %q", errArg, cmd)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, sh.status())
	return nil
}

// watch redraws the status line in place until the time is up.
func (sh *shell) watch(ctx context.Context, arg string) error {
	secs := 5
	if arg != "" {
		if _, err := fmt.Sscanf(arg, "%d", &secs); err != nil || secs <= 0 {
			return fmt.Errorf("%w: watch needs a number of seconds", errArg)
		}
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()
	deadline := time.After(time.Duration(secs) * time.Second)

	for {
		fmt.Fprintf(sh.out, "\r\033[K%s", sh.status())
		select {
		case <-ctx.Done():
			fmt.Fprintln(sh.out)
			return nil
		case <-deadline:
			fmt.Fprintln(sh.out)
			return nil
		case <-ticker.C:
		}
	}
}
