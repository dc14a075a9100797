package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	Test(ctx context.Context) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Wait(ctx context.Context) error
	Reset(ctx context.Context) error
	Health(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command and dispatches to methods on 'a'. The loop exits on scanner EOF
// or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help           show available commands
//	  - login          authenticate, answering a verification prompt if asked
//	  - health         server and database status
//	  - exit | quit    leave the program
//
//	Logged in additionally:
//	  - me             show the current session
//	  - test           check stored provider credentials
//	  - sync           start a library sync
//	  - status         show the sync status
//	  - wait           poll the sync status until it finishes
//	  - reset          reset a stuck sync status
//	  - logout         log out
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("shelfsync %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, test, sync, status, wait, reset, health, logout, exit")
			} else {
				printlnFn("Available commands: login, health, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "health":
			err = a.Health(ctx)

		case "me", "test", "sync", "status", "wait", "reset", "logout":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			err = dispatch(ctx, a, cmd)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string) error {
	switch cmd {
	case "me":
		return a.Me(ctx)
	case "test":
		return a.Test(ctx)
	case "sync":
		return a.Sync(ctx)
	case "status":
		return a.Status(ctx)
	case "wait":
		return a.Wait(ctx)
	case "reset":
		return a.Reset(ctx)
	case "logout":
		return a.Logout(ctx)
	}
	return nil
}
