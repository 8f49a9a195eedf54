package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/idilsaglam/mytodo/internal/apperr"
	"github.com/idilsaglam/mytodo/internal/form"
	"github.com/idilsaglam/mytodo/internal/session"
	"github.com/idilsaglam/mytodo/internal/ui"
)

var (
	loginFields = []form.Field{
		{Name: "username", Label: "Username", Required: true},
		{Name: "password", Label: "Password", Required: true},
	}
	registerFields = []form.Field{
		{Name: "username", Label: "Username", Required: true},
		{Name: "email", Label: "Email", Required: true},
		{Name: "password", Label: "Password", Required: true},
	}
)

func (r *runner) auth(ctx context.Context, args []string) int {
	if len(args) == 0 {
		return r.usage("auth login|register|logout|status|whoami")
	}
	switch args[0] {
	case "login":
		return r.login(ctx, args[1:])
	case "register":
		return r.register(ctx, args[1:])
	case "logout":
		return r.logout()
	case "status":
		return r.status()
	case "whoami":
		return r.whoami(ctx)
	}
	ui.Fail(r.Stderr, "unknown auth subcommand: "+args[0])
	return ExitUsage
}

// prompt reads one line from stdin.
func (r *runner) prompt(in *bufio.Scanner, label string) string {
	fmt.Fprint(r.Stdout, label+": ")
	if in.Scan() {
		return strings.TrimSpace(in.Text())
	}
	return ""
}

// collect fills unset values from stdin and validates presence.
func (r *runner) collect(fields []form.Field, vals map[string]*string) (form.Draft, error) {
	var in *bufio.Scanner
	d := form.Draft{}
	for _, f := range fields {
		v := strings.TrimSpace(*vals[f.Name])
		if v == "" && r.Stdin != nil {
			if in == nil {
				in = bufio.NewScanner(r.Stdin)
			}
			v = r.prompt(in, f.Label)
		}
		d[f.Name] = v
	}
	checks := make([]form.ValidationFn, 0, len(fields))
	for _, f := range fields {
		checks = append(checks, form.ValidatePresence(f))
	}
	if errs := form.Validate(d, checks...); len(errs) > 0 {
		return nil, apperr.NewValidation("auth", errs...)
	}
	return d, nil
}

func (r *runner) login(ctx context.Context, args []string) int {
	fs := r.flags("auth login")
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	if _, err := parseArgs(fs, args); err != nil {
		return ExitUsage
	}
	d, err := r.collect(loginFields, map[string]*string{"username": user, "password": pass})
	if err != nil {
		return r.report(err)
	}
	st, err := r.App.Login(ctx, r.st, d.Get("username"), d.Get("password"))
	if err != nil {
		return r.report(err)
	}
	r.st = st
	ui.OK(r.Stdout, "Login successful")
	return ExitOK
}

func (r *runner) register(ctx context.Context, args []string) int {
	fs := r.flags("auth register")
	user := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	pass := fs.String("p", "", "password")
	if _, err := parseArgs(fs, args); err != nil {
		return ExitUsage
	}
	d, err := r.collect(registerFields, map[string]*string{"username": user, "email": email, "password": pass})
	if err != nil {
		return r.report(err)
	}
	if err := r.App.Register(ctx, d.Get("username"), d.Get("email"), d.Get("password")); err != nil {
		return r.report(err)
	}
	ui.OK(r.Stdout, "Registration successful! Please login.")
	return ExitOK
}

func (r *runner) logout() int {
	st, err := r.App.Logout(r.st)
	if err != nil {
		ui.Fail(r.Stderr, err.Error())
		return ExitError
	}
	r.st = st
	ui.OK(r.Stdout, "logged out")
	return ExitOK
}

func (r *runner) status() int {
	s := r.st.Session
	if !r.st.Authenticated() || s == nil {
		ui.Fail(r.Stdout, "not logged in")
		return ExitUsage
	}
	ui.OK(r.Stdout, fmt.Sprintf("logged in (%s), expires %s", s.Source, s.Expiry.Local().Format(time.RFC1123)))
	return ExitOK
}

// whoami reads the user from the token claims, asking the server when the
// token is opaque.
func (r *runner) whoami(ctx context.Context) int {
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	if claims, ok := session.Claims(r.st.Session.Token); ok {
		for _, k := range []string{"username", "name", "sub", "id"} {
			if v, ok := claims[k]; ok {
				fmt.Fprintln(r.Stdout, v)
				return ExitOK
			}
		}
	}
	p, err := r.App.Client.Profile(ctx)
	if err != nil {
		return r.report(err)
	}
	fmt.Fprintln(r.Stdout, p.Username)
	return ExitOK
}

func (r *runner) profile(ctx context.Context) int {
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	p, err := r.App.Client.Profile(ctx)
	if err != nil {
		return r.report(err)
	}
	t := ui.Current()
	lines := []string{
		t.Title.Render("Profile"),
		"",
		t.Accent.Render("Username: ") + p.Username,
		t.Accent.Render("Email:    ") + p.Email,
	}
	if !p.CreatedAt.IsZero() {
		lines = append(lines, t.Accent.Render("Joined:   ")+p.CreatedAt.Format("January 2, 2006"))
	}
	ui.Panel(r.Stdout, lines)
	return ExitOK
}
