// Package cli routes subcommands and maps results to exit codes.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/idilsaglam/mytodo/internal/api"
	"github.com/idilsaglam/mytodo/internal/app"
	"github.com/idilsaglam/mytodo/internal/apperr"
	"github.com/idilsaglam/mytodo/internal/form"
	"github.com/idilsaglam/mytodo/internal/listctl"
	"github.com/idilsaglam/mytodo/internal/model"
	"github.com/idilsaglam/mytodo/internal/session"
	"github.com/idilsaglam/mytodo/internal/tui"
	"github.com/idilsaglam/mytodo/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2 // bad usage, or no session
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by pending/done
}

// DashboardFunc runs the interactive dashboard.
type DashboardFunc func(ctx context.Context, lc *listctl.Controller[model.Todo], fc *form.Controller[model.Todo]) (tui.Result, error)

// Env is everything a command touches outside its arguments.
type Env struct {
	App       *app.App
	Stdout    io.Writer
	Stderr    io.Writer
	Stdin     io.Reader
	Dashboard DashboardFunc // defaults to tui.Run
}

type runner struct {
	Env
	opt Options
	st  session.State
}

// Run dispatches subcommands and returns an exit code.
func Run(ctx context.Context, args []string, opt Options, env Env) int {
	if env.Dashboard == nil {
		env.Dashboard = tui.Run
	}
	r := &runner{Env: env, opt: opt}

	st, err := env.App.Start()
	if err != nil {
		ui.Fail(r.Stderr, "session: "+err.Error())
		return ExitError
	}
	r.st = st

	if len(args) == 0 {
		return r.home(ctx)
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(r.Stdout)
		return ExitOK
	case "auth":
		return r.auth(ctx, a)
	case "profile":
		return r.profile(ctx)
	case "ui":
		return r.dashboard(ctx)
	case "ls":
		return r.todoList(ctx, a)
	case "add":
		return r.todoAdd(ctx, a)
	case "edit":
		return r.todoEdit(ctx, a)
	case "done":
		return r.todoDone(ctx, a)
	case "rm":
		return r.todoRemove(ctx, a)
	case "show":
		return r.todoShow(ctx, a)
	case "recipes":
		return r.recipes(ctx, a)
	}

	ui.Fail(r.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.Stderr)
	PrintHelp(r.Stderr)
	return ExitUsage
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `mytodo - todos and recipes from the terminal

Usage:
  mytodo [--group] <subcommand> [args]

Account:
  auth login [-u user] [-p pass]          Sign in (prompts for missing values)
  auth register [-u user] [-e email] [-p pass]
  auth logout | status | whoami
  profile                                 Show the signed-in user

Todos:
  ui                                      Interactive dashboard (same as no subcommand)
  ls [-filter all|completed|pending]      List todos
  add <title...> -d <description>         Add a todo
  edit <index> [-t title] [-d desc]       Edit a todo
  done <index>                            Toggle done for the todo at 1-based index
  rm <index>                              Remove a todo
  show <index>                            Show details

Recipes:
  recipes ls | favs
  recipes add -n name -i ingredients -s steps [-image path]
  recipes edit <index> [-n] [-i] [-s] [-image]
  recipes rm <index> | fav <index>

Examples:
  mytodo auth login -u budi
  mytodo add Buy milk -d "2 liters"
  mytodo done 2
  mytodo recipes fav 1
`)
}

// home is the navigation root.
func (r *runner) home(ctx context.Context) int {
	if r.st.Authenticated() {
		return r.dashboard(ctx)
	}
	t := ui.Current()
	ui.Panel(r.Stdout, []string{
		t.Title.Render("Welcome to myToDo"),
		"",
		"Sign in with " + t.Accent.Render("mytodo auth login"),
		"or create an account with " + t.Accent.Render("mytodo auth register"),
	})
	return ExitUsage
}

func (r *runner) dashboard(ctx context.Context) int {
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	lc := r.App.Todos()
	res, err := r.Dashboard(ctx, lc, app.TodoForm(lc))
	if err != nil {
		ui.Fail(r.Stderr, "dashboard: "+err.Error())
		return ExitError
	}
	if res.Expired {
		return r.report(api.ErrUnauthorized)
	}
	return ExitOK
}

// requireAuth fails fast on the anonymous route.
func (r *runner) requireAuth() (int, bool) {
	if r.st.Authenticated() {
		return ExitOK, true
	}
	return r.report(session.ErrNoSession), false
}

// report prints err as an alert and returns its exit code. A lost session
// moves the run to the anonymous route.
func (r *runner) report(err error) int {
	if err == nil {
		return ExitOK
	}
	if st, ok := r.App.Expire(r.st, err); ok {
		r.st = st
		msg := "not logged in"
		if errors.Is(err, api.ErrUnauthorized) {
			msg = "session expired, please login again"
		}
		ui.Fail(r.Stderr, msg)
		ui.Muted(r.Stderr, "Hint: run `mytodo auth login`")
		return ExitUsage
	}
	if errors.Is(err, context.Canceled) {
		ui.Fail(r.Stderr, "interrupted")
		return ExitError
	}
	r.App.Logger.Debug("command failed", "err", err)
	ui.Fail(r.Stderr, apperr.Message(err))
	if apperr.KindOf(err) == apperr.Validation {
		return ExitUsage
	}
	return ExitError
}

// parseArgs parses fs allowing flags before, between and after
// positional arguments. Everything after a bare "--" is positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if used := len(args) - len(rest); used > 0 && args[used-1] == "--" {
			return append(pos, rest...), nil
		}
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func (r *runner) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.Stderr)
	return fs
}

func (r *runner) usage(msg string) int {
	ui.Fail(r.Stderr, "usage: mytodo "+msg)
	return ExitUsage
}

// index parses a single 1-based index argument.
func (r *runner) index(name string, pos []string) (int, bool) {
	if len(pos) != 1 {
		r.usage(name + " <index>")
		return 0, false
	}
	n, err := strconv.Atoi(pos[0])
	if err != nil {
		ui.Fail(r.Stderr, name+": not a number: "+pos[0])
		return 0, false
	}
	return n, true
}

// pick refreshes lc and returns the item at the 1-based position n.
func pick[T model.Item[T]](ctx context.Context, r *runner, lc *listctl.Controller[T], n int, hint string) (T, int, bool) {
	var zero T
	if _, err := lc.Refresh(ctx); err != nil {
		return zero, r.report(err), false
	}
	it, err := lc.At(n)
	if err != nil {
		ui.Fail(r.Stderr, err.Error())
		ui.Muted(r.Stderr, "Hint: run `mytodo "+hint+"` to see valid indexes")
		return zero, ExitUsage, false
	}
	return it, ExitOK, true
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
