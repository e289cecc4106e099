/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"hdxvis/internal/log"
	"hdxvis/pkg/spec"
)

// server is the line protocol on the control socket. Anyone may query;
// the first connection sending a control verb owns playback until it
// disconnects and receives an EVENT line for every snapshot.
type server struct {
	p   player
	lib library

	mu     sync.Mutex
	owner  *client
	cancel func()
}

type client struct {
	conn net.Conn
	wmu  sync.Mutex
}

func (c *client) send(line string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func newServer(p player, lib library) *server {
	return &server{p: p, lib: lib}
}

// listen replaces a stale socket file and listens on path.
func (s *server) listen(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return net.Listen("unix", path)
}

func (s *server) serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.WithError(err).Warn("control accept")
			continue
		}
		go s.handle(conn)
	}
}

func (s *server) isOwner(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner == c
}

func (s *server) claim(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == c {
		return true
	}
	if s.owner != nil {
		return false
	}
	s.owner = c

	ch, cancel := s.p.Subscribe(32)
	s.cancel = cancel
	go func() {
		for snap := range ch {
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			if c.send("EVENT "+string(data)) != nil {
				return
			}
		}
	}()
	return true
}

// release drops ownership held by c and pauses playback.
func (s *server) release(c *client) {
	s.mu.Lock()
	if s.owner != c {
		s.mu.Unlock()
		return
	}
	s.owner = nil
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	if err := s.p.Pause(); err != nil {
		log.WithError(err).Debug("pause on control release")
	}
}

func (s *server) handle(conn net.Conn) {
	c := &client{conn: conn}
	defer func() {
		s.release(c)
		conn.Close()
	}()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := c.send(s.exec(c, line)); err != nil {
			return
		}
	}
}

// exec runs one command line and returns the reply.
func (s *server) exec(c *client, line string) string {
	verb, arg, _ := strings.Cut(line, " ")
	verb = strings.ToUpper(verb)
	arg = strings.TrimSpace(arg)

	switch verb {
	case spec.CmdPing:
		return "PONG"
	case spec.CmdAbout:
		return about()
	case spec.CmdWhoami:
		if s.isOwner(c) {
			return "OWNER"
		}
		return "OBSERVER"
	case spec.CmdStatus:
		return jsonLine(s.p.Snapshot())
	case spec.CmdList:
		if arg != "" {
			return jsonLine(s.lib.Search(arg))
		}
		return jsonLine(s.lib.List())
	}

	var run func() error
	switch verb {
	case spec.CmdOpen:
		if arg == "" {
			return "ERR " + spec.ErrArg
		}
		run = func() error { return openTrack(s.p, s.lib, arg) }
	case spec.CmdPlay:
		run = func() error {
			if arg != "" {
				if err := openTrack(s.p, s.lib, arg); err != nil {
					return err
				}
			}
			return s.p.Resume()
		}
	case spec.CmdPause:
		run = s.p.Pause
	case spec.CmdResume:
		run = s.p.Resume
	case spec.CmdSeek:
		pos, err := parsePosition(arg)
		if err != nil {
			return "ERR " + spec.ErrArg
		}
		run = func() error { return s.p.SeekTo(pos) }
	case spec.CmdRestart:
		run = s.p.Restart
	case spec.CmdStop:
		run = s.p.Teardown
	default:
		return "ERR " + spec.ErrUnknown
	}

	if !s.claim(c) {
		return "ERR " + spec.ErrControlLocked
	}
	if err := run(); err != nil {
		log.WithField("verb", verb).WithError(err).Info("control command failed")
		return "ERR " + errCode(err)
	}
	return "OK"
}

func jsonLine(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("ERR %s", spec.ErrInternal)
	}
	return string(data)
}
