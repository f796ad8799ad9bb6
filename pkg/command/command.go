// Package command runs the external tools aurorus drives: pacman, makepkg
// and git.
//
// Callers depend on the [Runner] interface so that tests can script tool
// output without touching the system.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// maxOutputLines bounds how much tool output is repeated in error messages.
const maxOutputLines = 20

// Cmd describes one process invocation.
type Cmd struct {
	Name string   // executable, resolved through PATH
	Args []string // arguments, never passed through a shell
	Dir  string   // working directory (empty for the current one)
	Env  []string // extra KEY=value pairs appended to the environment
}

// String renders the command line for logs.
func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands and returns their combined output.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) ([]byte, error)
}

// Error reports a command that could not start or exited unsuccessfully.
type Error struct {
	Cmd    Cmd
	Err    error
	Output string
	Exit   int // process exit status, -1 if it never ran
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v (output: %s)", e.Cmd.Name, e.Err, tail(e.Output, maxOutputLines))
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the process exit status, or -1 if it never ran.
func (e *Error) ExitCode() int { return e.Exit }

// Output returns the tool output carried by err, if any.
func Output(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Output
	}
	return ""
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Stream, when set, receives output while the command runs. Output is
	// still captured and returned.
	Stream io.Writer
	Logger *log.Logger
}

// NewExecRunner creates an ExecRunner. A nil logger discards debug output.
func NewExecRunner(stream io.Writer, logger *log.Logger) *ExecRunner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ExecRunner{Stream: stream, Logger: logger}
}

// Run executes cmd and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, cmd Cmd) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.Stream != nil {
		w = io.MultiWriter(&buf, r.Stream)
	}
	c.Stdout = w
	c.Stderr = w

	if r.Logger != nil {
		r.Logger.Debug("exec", "cmd", cmd.String(), "dir", cmd.Dir)
	}
	err := c.Run()
	out := buf.Bytes()
	if err != nil {
		exit := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exit = exitErr.ExitCode()
		}
		return out, &Error{Cmd: cmd, Err: err, Output: string(out), Exit: exit}
	}
	return out, nil
}

// LookPath reports whether name is an executable on PATH.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return "...\n" + strings.Join(lines[len(lines)-n:], "\n")
}

var _ Runner = (*ExecRunner)(nil)
