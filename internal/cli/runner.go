package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todos/internal/markdown"
	"github.com/idilsaglam/todos/internal/model"
	"github.com/idilsaglam/todos/internal/session"
	"github.com/idilsaglam/todos/internal/store/sqlitestore"
	"github.com/idilsaglam/todos/internal/ui"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
)

// Store is the record store the commands work against.
type Store interface {
	Add(ctx context.Context, it model.Item) (model.Item, error)
	ListAll(ctx context.Context) ([]model.Item, error)
	ListDone(ctx context.Context) ([]model.Item, error)
	ListUndone(ctx context.Context) ([]model.Item, error)
	SetDone(ctx context.Context, id int64, done bool) error
	ReplaceToday(ctx context.Context, items []model.Item) error
}

// Opener shows a file to the user and returns once they are done with it.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Env carries everything a command needs.
type Env struct {
	Store       Store
	Editor      Opener
	Pager       Opener
	ScratchPath func() string
	ListPath    func() string
	In          io.Reader
	Print       *ui.Printer
	Log         *log.Logger
}

type handler func(ctx context.Context, env *Env, params []string) error

type action struct {
	name string
	run  handler
}

// actions is the dispatch table, in the order they are shown to the user.
var actions = []action{
	{"add", runAdd},
	{"done", func(ctx context.Context, env *Env, p []string) error { return runSetDone(ctx, env, p, true) }},
	{"undone", func(ctx context.Context, env *Env, p []string) error { return runSetDone(ctx, env, p, false) }},
	{"list", runList},
	{"edit", runEdit},
	{"help", runHelp},
}

// Run dispatches an action and returns the process exit code. It is the
// only place that turns errors into exit codes.
func Run(ctx context.Context, args []string, env *Env) int {
	if len(args) == 0 {
		env.Print.Fail("Usage: todos <action> <args>")
		env.Print.Hint("Valid actions: " + validActions())
		return ExitError
	}
	verb, params := strings.ToLower(args[0]), args[1:]
	if verb == "-h" || verb == "--help" {
		verb = "help"
	}

	for _, a := range actions {
		if a.name != verb {
			continue
		}
		if err := a.run(ctx, env, params); err != nil {
			report(env, verb, err)
			return ExitError
		}
		return ExitOK
	}

	env.Print.Fail(fmt.Sprintf("%q is not a valid action!", args[0]))
	env.Print.Hint("Valid actions: " + validActions())
	return ExitError
}

func validActions() string {
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, a.name)
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func report(env *Env, verb string, err error) {
	if env.Log != nil {
		env.Log.Debug("action failed", "action", verb, "err", err)
	}
	env.Print.Fail(verb + ": " + err.Error())
	var h *hintError
	if errors.As(err, &h) {
		env.Print.Hint(h.hint)
	}
}

// -------------- subcommand impls ----------------

func runAdd(ctx context.Context, env *Env, params []string) error {
	if len(params) < 1 || strings.TrimSpace(params[0]) == "" {
		return usage("todos add <title> <description?>")
	}
	if strings.ContainsAny(params[0], "\r\n") {
		return &UsageError{Msg: "a TODO title must fit on one line"}
	}
	var description string
	if len(params) > 1 {
		description = params[1]
	}
	saved, err := env.Store.Add(ctx, model.New(strings.TrimSpace(params[0]), description, false))
	if err != nil {
		return err
	}
	env.Print.Println(markdown.Block(saved))
	return nil
}

func runSetDone(ctx context.Context, env *Env, params []string, done bool) error {
	var id int64
	if len(params) < 1 {
		picked, ok, err := pick(ctx, env, done)
		if err != nil || !ok {
			return err
		}
		id = picked
	} else {
		n, err := parseID(params[0])
		if err != nil {
			return err
		}
		id = n
	}

	if err := env.Store.SetDone(ctx, id, done); err != nil {
		if errors.Is(err, sqlitestore.ErrNotFound) {
			return &hintError{err: err, hint: "Hint: run `todos list` to see today's TODOs"}
		}
		return err
	}
	state := "done"
	if !done {
		state = "undone"
	}
	env.Print.OK(fmt.Sprintf("marked #%d as %s", id, state))
	return nil
}

// pick lists the items that can change state and asks for an id.
// ok is false when there is nothing to pick from.
func pick(ctx context.Context, env *Env, done bool) (id int64, ok bool, err error) {
	var (
		items  []model.Item
		header string
		target string
	)
	if done {
		items, err = env.Store.ListUndone(ctx)
		header, target = "Here are your TODOs:", "done"
	} else {
		items, err = env.Store.ListDone(ctx)
		header, target = "Here are your finished TODOs:", "undone"
	}
	if err != nil {
		return 0, false, err
	}
	if len(items) == 0 {
		env.Print.Hint("No TODO created yet")
		return 0, false, nil
	}

	lines := []string{env.Print.Title(header)}
	for _, it := range items {
		label := fmt.Sprintf("%d:", it.ID)
		if it.Done {
			label = env.Print.Success(label)
		} else {
			label = env.Print.Pending(label)
		}
		lines = append(lines, label+" "+it.Title)
	}
	env.Print.Panel(lines)
	env.Print.Prompt(fmt.Sprintf("Which TODO do you want to mark as %s?", target))

	line, err := bufio.NewReader(env.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, false, fmt.Errorf("read answer: %w", err)
	}
	id, err = parseID(line)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &UsageError{Msg: fmt.Sprintf("not a valid TODO id: %q", s)}
	}
	return id, nil
}

func runList(ctx context.Context, env *Env, _ []string) error {
	items, err := env.Store.ListAll(ctx)
	if err != nil {
		return err
	}
	s, err := session.Open(env.ListPath(), items)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && env.Log != nil {
			env.Log.Warn("could not remove scratch file", "path", s.Path(), "err", cerr)
		}
	}()
	return s.Launch(ctx, env.Pager)
}

func runEdit(ctx context.Context, env *Env, _ []string) error {
	path := env.ScratchPath()
	items, err := session.EditToday(ctx, env.Store, env.Editor, path)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrUnsavedEdits):
			return &hintError{err: err, hint: "Fix or delete that file, then run `todos edit` again"}
		case errors.Is(err, markdown.ErrMalformedDocument), errors.Is(err, sqlitestore.ErrStorage):
			// only these can fail after the user has edited the file
			if _, statErr := os.Stat(path); statErr == nil {
				return &hintError{err: err, hint: "Your edits are kept in " + path}
			}
		}
		return err
	}
	env.Print.OK(fmt.Sprintf("saved %d TODOs", len(items)))
	return nil
}

func runHelp(_ context.Context, env *Env, _ []string) error {
	PrintHelp(env.Print.Out)
	return nil
}

// PrintHelp writes the usage text to w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todos - today's TODOs from the command line

Usage:
  todos [flags] <action> [params]

Actions:
  add <title> [description]   Add a TODO and print it
  list                        Show today's TODOs in the pager
  done [id]                   Mark a TODO as done (asks when id is omitted)
  undone [id]                 Mark a TODO as not done (asks when id is omitted)
  edit                        Edit today's TODOs in your editor
  help                        Show this help

Flags:
  -config <path>   config file (default ~/.config/todos/config.toml)
  -db <path>       database file
  -v               debug logging
  -no-color        plain output

Examples:
  todos add "Buy milk" "semi-skimmed"
  todos done 3
  todos edit
`)
}
