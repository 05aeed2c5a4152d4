package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errExit = errors.New("exit")

// execIface is the command surface of the prompt. App implements it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	List(ctx context.Context) error
	View(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

// dispatch runs one command. errExit asks the prompt to stop.
func dispatch(ctx context.Context, a execIface, w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Fprintln(w, "Available commands: upload <file>, (l)ist, view <objectPath>, logout, exit")
		} else {
			fmt.Fprintln(w, "Available commands: register, login, exit")
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "upload":
		return a.Upload(ctx, args)
	case "l", "list":
		return a.List(ctx)
	case "view":
		return a.View(ctx, args)
	case "logout":
		return a.Logout(ctx)
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// runREPL reads commands until EOF or exit. Command errors are printed and
// the loop goes on. Commands prompt through the same reader, so it must not
// read ahead of the current line.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	fmt.Fprintln(w, "BEA e-books CLI (type 'help' for commands)")
	for {
		fmt.Fprintf(w, "bea %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		err = dispatch(ctx, a, w, parts[0], parts[1:])
		if errors.Is(err, errExit) {
			fmt.Fprintln(w, "Bye!")
			return
		}
		if err != nil {
			fmt.Fprintln(w, "error:", err)
		}
	}
}
