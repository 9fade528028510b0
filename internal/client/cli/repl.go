package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Reminders(ctx context.Context) error
	AddReminder(ctx context.Context) error
	Symptoms(ctx context.Context) error
	Check(ctx context.Context) error
}

// protected lists commands that need a session.
var protected = map[string]bool{
	"logout":      true,
	"whoami":      true,
	"profile":     true,
	"reminders":   true,
	"addreminder": true,
	"symptoms":    true,
	"check":       true,
}

// runREPL starts a simple read-eval-print loop for the MediGuard CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
//	Not logged in:
//	  - help          : show available commands
//	  - register      : create an account
//	  - login         : authenticate
//	  - exit | quit   : leave the program
//
//	Logged in:
//	  - whoami        : show the current user
//	  - profile       : refresh the profile from the server
//	  - reminders     : list medication reminders
//	  - addreminder   : create a medication reminder
//	  - symptoms      : list previous symptom checks
//	  - check         : describe symptoms and get a response
//	  - logout        : log out
//
// Protected commands issued without a session send the user to login.
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "mediguard %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		if protected[cmd] && !a.isLoggedIn() {
			fmt.Fprintln(w, "Please log in first (type 'login' or 'register').")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: whoami, profile, reminders, addreminder, symptoms, check, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "reminders":
			_ = a.Reminders(ctx)

		case "addreminder":
			_ = a.AddReminder(ctx)

		case "symptoms":
			_ = a.Symptoms(ctx)

		case "check":
			_ = a.Check(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w)
			return
		}
	}
}
