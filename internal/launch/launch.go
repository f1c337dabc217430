// Package launch runs external programs (editor, pager) on a file and waits
// for them with the terminal attached.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	DefaultEditor = "nvim"
	DefaultPager  = "less"
)

// ErrExternalProcess matches every launch failure.
var ErrExternalProcess = errors.New("external process failed")

// ExternalProcessError reports a program that could not start or exited non-zero.
type ExternalProcessError struct {
	Program string
	Err     error
}

func (e *ExternalProcessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Program, e.Err)
}
func (e *ExternalProcessError) Unwrap() error { return e.Err }
func (e *ExternalProcessError) Is(target error) bool {
	return target == ErrExternalProcess
}

// Command is a program line such as "code --wait". The file path is
// appended as the last argument.
type Command struct {
	Line   string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    *log.Logger
}

// New returns a Command wired to the process terminal.
func New(line string, logger *log.Logger) *Command {
	return &Command{
		Line:   line,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    logger,
	}
}

// Open runs the program on path and blocks until it exits. The wait is
// unbounded: ctx is not used to stop the program, and an interrupt from the
// terminal is left to the program while it runs.
func (c *Command) Open(_ context.Context, path string) error {
	argv := strings.Fields(c.Line)
	if len(argv) == 0 {
		return &ExternalProcessError{Program: "(none)", Err: errors.New("no program configured")}
	}
	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if c.Log != nil {
		c.Log.Debug("launching", "program", argv[0], "file", path)
	}
	// Catch SIGINT rather than ignore it: an ignored signal would stay
	// ignored in the child.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	if err := cmd.Run(); err != nil {
		return &ExternalProcessError{Program: argv[0], Err: err}
	}
	return nil
}

// ResolveEditor picks the editor: configured value, $VISUAL, $EDITOR, then nvim.
func ResolveEditor(configured string) string {
	return firstNonEmpty(configured, os.Getenv("VISUAL"), os.Getenv("EDITOR"), DefaultEditor)
}

// ResolvePager picks the pager: configured value, $PAGER, then less.
func ResolvePager(configured string) string {
	return firstNonEmpty(configured, os.Getenv("PAGER"), DefaultPager)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
