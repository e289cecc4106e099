package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"hdxvis/pkg/spec"

	"github.com/chzyer/readline"
)

const (
	socket_file        = "/tmp/hdx-visualizer.sock"
	app_name           = "HDX-Client"
	developer_title    = "Developer Hardiyanto"
	developer_subtitle = "Build 27/12/2025 Ebiet Version"
)

var verbs = []string{
	spec.CmdPing, spec.CmdAbout, spec.CmdWhoami, spec.CmdStatus, spec.CmdList,
	spec.CmdOpen, spec.CmdPlay, spec.CmdPause, spec.CmdResume, spec.CmdSeek,
	spec.CmdRestart, spec.CmdStop,
}

func main() {
	socket := flag.String("socket", socket_file, "control socket of hdx-visualizer")
	quiet := flag.Bool("quiet", false, "hide EVENT lines")
	flag.Parse()

	fmt.Printf("\n%s V.%d.%d\n", app_name, spec.VersionMajor, spec.VersionMinor)
	fmt.Printf("%s %s\n", developer_title, developer_subtitle)

	conn, err := net.Dial("unix", *socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}
	defer conn.Close()

	// one-shot mode: hdx-client STATUS
	if flag.NArg() > 0 {
		os.Exit(oneShot(conn, strings.Join(flag.Args(), " ")))
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(verbs)+1)
	for _, v := range verbs {
		items = append(items, readline.PcItem(v))
	}
	items = append(items, readline.PcItem("QUIT"))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "hdx> ",
		AutoComplete: readline.NewPrefixCompleter(items...),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("CONNECTED")
	fmt.Println(`Type a command, "QUIT" to exit`)

	go receive(conn, rl.Stdout(), *quiet, func() { rl.Close() })

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") {
			fmt.Println("Bye.")
			return
		}
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			fmt.Println("WRITE ERROR:", err)
			return
		}
	}
}

func receive(conn net.Conn, out io.Writer, quiet bool, closed func()) {
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		text := sc.Text()
		if quiet && strings.HasPrefix(text, "EVENT ") {
			continue
		}
		fmt.Fprintln(out, text)
	}
	fmt.Fprintln(out, "SOCKET CLOSED")
	closed()
}

// oneShot sends one command and prints its reply. It returns the exit code.
func oneShot(conn net.Conn, line string) int {
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		reply := sc.Text()
		if strings.HasPrefix(reply, "EVENT ") {
			continue
		}
		fmt.Println(reply)
		if strings.HasPrefix(reply, "ERR ") {
			return 2
		}
		return 0
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintln(os.Stderr, err)
	}
	return 1
}
