package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	admin    bool

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) isAdmin() bool    { return f.admin }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Rooms(ctx context.Context) error {
	f.calls = append(f.calls, "rooms")
	return nil
}
func (f *fakeExec) Exam(ctx context.Context) error {
	f.calls = append(f.calls, "exam")
	return nil
}
func (f *fakeExec) ImportBank(ctx context.Context) error {
	f.calls = append(f.calls, "importbank")
	return nil
}
func (f *fakeExec) Banks(ctx context.Context) error {
	f.calls = append(f.calls, "banks")
	return nil
}
func (f *fakeExec) ShowBank(ctx context.Context) error {
	f.calls = append(f.calls, "showbank")
	return nil
}
func (f *fakeExec) UpdateBank(ctx context.Context) error {
	f.calls = append(f.calls, "updatebank")
	return nil
}
func (f *fakeExec) DeleteBank(ctx context.Context) error {
	f.calls = append(f.calls, "deletebank")
	return nil
}
func (f *fakeExec) CreateRoom(ctx context.Context) error {
	f.calls = append(f.calls, "createroom")
	return nil
}
func (f *fakeExec) Stats(ctx context.Context) error {
	f.calls = append(f.calls, "stats")
	return nil
}
func (f *fakeExec) DeleteRoom(ctx context.Context) error {
	f.calls = append(f.calls, "deleteroom")
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"rooms",
		"exam",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "rooms", "exam", "logout"}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}
}

func TestRunREPL_AdminCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"importbank",
		"banks",
		"showbank",
		"updatebank",
		"createroom",
		"stats",
		"deleteroom",
		"deletebank",
		"quit",
	}, "\n"))

	exec := &fakeExec{loggedIn: true, admin: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "" }, sc)

	want := []string{"importbank", "banks", "showbank", "updatebank", "createroom", "stats", "deleteroom", "deletebank"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Fatalf("calls mismatch: got %v, want %v", exec.calls, want)
		}
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader(""))

	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
