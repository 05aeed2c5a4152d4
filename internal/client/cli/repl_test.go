package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	args     [][]string
	err      error
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Upload(_ context.Context, args []string) error {
	f.calls = append(f.calls, "upload")
	f.args = append(f.args, args)
	return f.err
}
func (f *fakeExec) List(context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) View(_ context.Context, args []string) error {
	f.calls = append(f.calls, "view")
	f.args = append(f.args, args)
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"",
		"help",
		"upload book.pdf",
		"l",
		"view u1/f1.pdf",
		"frobnicate",
		"logout",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "(me)" }, bufio.NewReader(input), &out)

	assert.Equal(t, []string{"login", "upload", "list", "view", "logout"}, exec.calls)
	assert.Equal(t, [][]string{{"book.pdf"}, {"u1/f1.pdf"}}, exec.args)

	s := out.String()
	assert.Contains(t, s, "Available commands: register, login, exit")
	assert.Contains(t, s, "Available commands: upload <file>")
	assert.Contains(t, s, "error: unknown command: frobnicate")
	assert.Contains(t, s, "bea (me)> ")
	assert.Contains(t, s, "Bye!")
}

func TestRunREPL_PrintsCommandErrorsAndContinues(t *testing.T) {
	exec := &fakeExec{loggedIn: true, err: errors.New("file too large")}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("upload a.pdf\nlist\n")), &out)

	assert.Equal(t, []string{"upload", "list"}, exec.calls)
	assert.Contains(t, out.String(), "error: file too large")
}

func TestDispatch_Exit(t *testing.T) {
	var out bytes.Buffer
	err := dispatch(context.Background(), &fakeExec{}, &out, "quit", nil)
	require.ErrorIs(t, err, errExit)
}
