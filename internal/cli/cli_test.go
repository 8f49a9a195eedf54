package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/mytodo/internal/api/apitest"
	"github.com/idilsaglam/mytodo/internal/app"
	"github.com/idilsaglam/mytodo/internal/cli"
	"github.com/idilsaglam/mytodo/internal/config"
	"github.com/idilsaglam/mytodo/internal/form"
	"github.com/idilsaglam/mytodo/internal/listctl"
	"github.com/idilsaglam/mytodo/internal/model"
	"github.com/idilsaglam/mytodo/internal/tui"
	"github.com/idilsaglam/mytodo/internal/ui"
)

func init() { ui.SetTheme("mono") }

type harness struct {
	t      *testing.T
	srv    *apitest.Server
	cfg    config.Config
	stdin  string
	opt    cli.Options
	dash   cli.DashboardFunc
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	srv := apitest.New(t)
	srv.AddUser("budi", "budi@example.com", "rahasia")
	return &harness{
		t:   t,
		srv: srv,
		cfg: config.Config{
			APIURL:       srv.URL,
			RecipeAPIURL: srv.URL,
			Timeout:      5 * time.Second,
			Home:         t.TempDir(),
		},
	}
}

// run executes one CLI invocation as a fresh process over the same home.
func (h *harness) run(args ...string) int {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	a, err := app.New(h.cfg, nil)
	require.NoError(h.t, err)
	return cli.Run(context.Background(), args, h.opt, cli.Env{
		App:       a,
		Stdout:    &h.stdout,
		Stderr:    &h.stderr,
		Stdin:     strings.NewReader(h.stdin),
		Dashboard: h.dash,
	})
}

func (h *harness) login() {
	h.t.Helper()
	require.Equal(h.t, cli.ExitOK, h.run("auth", "login", "-u", "budi", "-p", "rahasia"), h.stderr.String())
}

func TestAuth_LoginStatusLogout(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, cli.ExitUsage, h.run("auth", "status"))
	assert.Contains(t, h.stdout.String(), "not logged in")

	h.login()
	assert.Contains(t, h.stdout.String(), "Login successful")

	assert.Equal(t, cli.ExitOK, h.run("auth", "status"))
	assert.Contains(t, h.stdout.String(), "logged in (file)")

	assert.Equal(t, cli.ExitOK, h.run("auth", "whoami"))
	assert.Equal(t, "budi\n", h.stdout.String())

	assert.Equal(t, cli.ExitOK, h.run("auth", "logout"))
	assert.Equal(t, cli.ExitUsage, h.run("ls"))
	assert.Contains(t, h.stderr.String(), "not logged in")
}

func TestAuth_LoginPromptsForMissingValues(t *testing.T) {
	h := newHarness(t)
	h.stdin = "rahasia\n"

	assert.Equal(t, cli.ExitOK, h.run("auth", "login", "-u", "budi"))
	assert.Contains(t, h.stdout.String(), "Password: ")
}

func TestAuth_LoginErrors(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, cli.ExitUsage, h.run("auth", "login"))
	assert.Contains(t, h.stderr.String(), "Username is a required field")

	assert.Equal(t, cli.ExitError, h.run("auth", "login", "-u", "budi", "-p", "wrong"))
	assert.Contains(t, h.stderr.String(), "Invalid username or password")
}

func TestAuth_Register(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, cli.ExitOK, h.run("auth", "register", "-u", "sari", "-e", "sari@example.com", "-p", "pw"))
	assert.Contains(t, h.stdout.String(), "Registration successful! Please login.")

	assert.Equal(t, cli.ExitError, h.run("auth", "register", "-u", "sari", "-e", "sari@example.com", "-p", "pw"))
	assert.Contains(t, h.stderr.String(), "User already exists")

	assert.Equal(t, cli.ExitOK, h.run("auth", "login", "-u", "sari", "-p", "pw"))
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	h.login()

	assert.Equal(t, cli.ExitOK, h.run("profile"))
	out := h.stdout.String()
	assert.Contains(t, out, "budi@example.com")
	assert.Contains(t, out, "January 2, 2024")
}

func TestTodos_Lifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	assert.Equal(t, cli.ExitOK, h.run("ls"))
	assert.Contains(t, h.stdout.String(), "no items")

	assert.Equal(t, cli.ExitUsage, h.run("add", "Buy", "milk"))
	assert.Contains(t, h.stderr.String(), "Description is a required field")
	assert.Empty(t, h.srv.Todos("budi"))

	assert.Equal(t, cli.ExitOK, h.run("add", "Buy", "milk", "-d", "2 liters"))
	assert.Equal(t, cli.ExitOK, h.run("add", "-d", "before work", "Walk", "dog"))
	todos := h.srv.Todos("budi")
	require.Len(t, todos, 2)
	assert.Equal(t, "Walk dog", todos[0].Title)

	assert.Equal(t, cli.ExitOK, h.run("done", "2"))
	assert.Contains(t, h.stdout.String(), "marked as done")
	assert.True(t, h.srv.Todos("budi")[1].Completed)

	assert.Equal(t, cli.ExitOK, h.run("ls"))
	out := h.stdout.String()
	assert.Contains(t, out, " 1. [ ] Walk dog")
	assert.Contains(t, out, " 2. [x] Buy milk")
	assert.Contains(t, out, " 50%")

	assert.Equal(t, cli.ExitOK, h.run("edit", "1", "-t", "Walk the dog"))
	assert.Equal(t, "Walk the dog", h.srv.Todos("budi")[0].Title)
	assert.Equal(t, "before work", h.srv.Todos("budi")[0].Description)

	assert.Equal(t, cli.ExitOK, h.run("show", "2"))
	assert.Contains(t, h.stdout.String(), "2 liters")
	assert.Contains(t, h.stdout.String(), "Completed")

	assert.Equal(t, cli.ExitOK, h.run("rm", "1"))
	require.Len(t, h.srv.Todos("budi"), 1)
	assert.Equal(t, "Buy milk", h.srv.Todos("budi")[0].Title)
}

func TestTodos_ListFilterAndGroup(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.SeedTodos("budi",
		model.Todo{ID: "a1", Title: "Pay rent", Completed: true},
		model.Todo{ID: "a2", Title: "Call mom"},
	)

	assert.Equal(t, cli.ExitOK, h.run("ls", "-filter", "pending"))
	assert.Contains(t, h.stdout.String(), "Call mom")
	assert.NotContains(t, h.stdout.String(), "Pay rent")

	h.opt.Group = true
	assert.Equal(t, cli.ExitOK, h.run("ls"))
	out := h.stdout.String()
	assert.Less(t, strings.Index(out, "Pending"), strings.Index(out, "Call mom"))
	assert.Less(t, strings.Index(out, "Done"), strings.Index(out, "Pay rent"))

	assert.Equal(t, cli.ExitUsage, h.run("ls", "-filter", "later"))
}

func TestTodos_BadIndex(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.SeedTodos("budi", model.Todo{ID: "a1", Title: "Pay rent"})

	assert.Equal(t, cli.ExitUsage, h.run("done", "5"))
	assert.Contains(t, h.stderr.String(), "index out of range: have 1, got 5")

	assert.Equal(t, cli.ExitUsage, h.run("rm", "x"))
	assert.Contains(t, h.stderr.String(), "rm: not a number: x")

	assert.Equal(t, cli.ExitUsage, h.run("show"))
}

func TestTodos_ShowWithoutDescription(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.SeedTodos("budi", model.Todo{ID: "a1", Title: "Pay rent"})

	assert.Equal(t, cli.ExitOK, h.run("show", "1"))
	assert.Contains(t, h.stdout.String(), "No description provided")
	assert.Contains(t, h.stdout.String(), "Pending")
}

func TestRejectedSessionIsCleared(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.Fail("GET", "/api/todos", 401, "jwt expired")

	assert.Equal(t, cli.ExitUsage, h.run("ls"))
	assert.Contains(t, h.stderr.String(), "session expired")

	assert.Equal(t, cli.ExitUsage, h.run("auth", "status"))
}

func TestServerErrorMessage(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.Fail("POST", "/api/todos", 500, "")

	assert.Equal(t, cli.ExitError, h.run("add", "Buy", "milk", "-d", "x"))
	assert.Contains(t, h.stderr.String(), "Error adding todo")
}

func TestRecipes(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.SeedRecipe("Nasi goreng", []string{"rice", "egg"}, []string{"fry"})

	assert.Equal(t, cli.ExitOK, h.run("recipes", "favs"))
	assert.Contains(t, h.stdout.String(), "No favorite recipes yet")

	assert.Equal(t, cli.ExitUsage, h.run("recipes", "add", "-n", "Soto"))
	assert.Contains(t, h.stderr.String(), "Ingredients is a required field")

	assert.Equal(t, cli.ExitOK, h.run("recipes", "add", "-n", "Soto", "-i", "chicken, turmeric", "-s", "boil"))
	assert.Contains(t, h.stdout.String(), "Recipe added")

	assert.Equal(t, cli.ExitOK, h.run("recipes", "ls"))
	out := h.stdout.String()
	assert.Contains(t, out, " 1.   Soto")
	assert.Contains(t, out, " 2.   Nasi goreng")
	assert.Contains(t, out, "rice, egg")

	assert.Equal(t, cli.ExitOK, h.run("recipes", "fav", "2"))
	assert.Contains(t, h.stdout.String(), "Nasi goreng added to favorites")

	assert.Equal(t, cli.ExitOK, h.run("recipes", "favs"))
	assert.Contains(t, h.stdout.String(), "Nasi goreng")
	assert.NotContains(t, h.stdout.String(), "Soto")

	assert.Equal(t, cli.ExitOK, h.run("recipes", "edit", "1", "-s", "boil slowly"))
	assert.Contains(t, h.stdout.String(), "Recipe updated")

	assert.Equal(t, cli.ExitOK, h.run("recipes", "rm", "1"))
	assert.Equal(t, cli.ExitOK, h.run("recipes", "ls"))
	assert.NotContains(t, h.stdout.String(), "Soto")
	assert.Contains(t, h.stdout.String(), " 1. * Nasi goreng")
}

func TestRoot(t *testing.T) {
	h := newHarness(t)
	var calls int
	h.dash = func(ctx context.Context, lc *listctl.Controller[model.Todo], fc *form.Controller[model.Todo]) (tui.Result, error) {
		calls++
		return tui.Result{}, nil
	}

	assert.Equal(t, cli.ExitUsage, h.run())
	assert.Contains(t, h.stdout.String(), "Welcome to myToDo")
	assert.Zero(t, calls)

	h.login()
	assert.Equal(t, cli.ExitOK, h.run())
	assert.Equal(t, 1, calls)

	h.dash = func(context.Context, *listctl.Controller[model.Todo], *form.Controller[model.Todo]) (tui.Result, error) {
		return tui.Result{Expired: true}, nil
	}
	assert.Equal(t, cli.ExitUsage, h.run("ui"))
	assert.Equal(t, cli.ExitUsage, h.run("auth", "status"))
}

func TestUnknownSubcommand(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, cli.ExitUsage, h.run("frobnicate"))
	assert.Contains(t, h.stderr.String(), "unknown subcommand: frobnicate")
	assert.Equal(t, cli.ExitOK, h.run("help"))
	assert.Contains(t, h.stdout.String(), "Usage:")
}

func TestTodos_AddAfterDoubleDash(t *testing.T) {
	h := newHarness(t)
	h.login()

	assert.Equal(t, cli.ExitOK, h.run("add", "-d", "literal flags", "--", "-d", "-t"))
	todos := h.srv.Todos("budi")
	require.Len(t, todos, 1)
	assert.Equal(t, "-d -t", todos[0].Title)
	assert.Equal(t, "literal flags", todos[0].Description)
}
