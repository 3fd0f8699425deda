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
	isAdmin() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Rooms(ctx context.Context) error
	Exam(ctx context.Context) error
	ImportBank(ctx context.Context) error
	Banks(ctx context.Context) error
	ShowBank(ctx context.Context) error
	UpdateBank(ctx context.Context) error
	DeleteBank(ctx context.Context) error
	CreateRoom(ctx context.Context) error
	Stats(ctx context.Context) error
	DeleteRoom(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the exam CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - rooms          — list exam rooms
//	  - exam           — take an exam (interactive room prompt)
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
//	Administrators additionally:
//	  - importbank     — import a question bank from a JSON file
//	  - banks          — list question banks
//	  - showbank       — print a bank's questions
//	  - updatebank     — replace a bank's questions from a JSON file
//	  - deletebank     — delete a question bank
//	  - createroom     — create an exam room
//	  - stats          — show a room's results
//	  - deleteroom     — delete an exam room
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("exam> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			switch {
			case a.isAdmin():
				printlnFn("Available commands: rooms, exam, importbank, banks, showbank, updatebank, deletebank, createroom, stats, deleteroom, logout, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: rooms, exam, logout, exit")
			default:
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "rooms":
			_ = a.Rooms(ctx)

		case "exam":
			_ = a.Exam(ctx)

		case "importbank":
			_ = a.ImportBank(ctx)

		case "banks":
			_ = a.Banks(ctx)

		case "showbank":
			_ = a.ShowBank(ctx)

		case "updatebank":
			_ = a.UpdateBank(ctx)

		case "deletebank":
			_ = a.DeleteBank(ctx)

		case "createroom":
			_ = a.CreateRoom(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "deleteroom":
			_ = a.DeleteRoom(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
