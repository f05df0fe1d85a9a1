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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	ResendVerification(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a until the
// reader hits EOF or the user types "exit" or "quit". Commands that prompt
// read from the same reader.
//
//	Not logged in: help, register, login, resend, exit
//	Logged in:     help, whoami, refresh, logout, resend, exit
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("verixa %s > ", statusFn()))
		line, rerr := reader.ReadString('\n')
		if rerr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, refresh, logout, resend, exit")
			} else {
				printlnFn("Available commands: register, login, resend, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "whoami", "me":
			err = a.WhoAmI(ctx)

		case "refresh":
			err = a.Refresh(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "resend":
			err = a.ResendVerification(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
