package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/idilsaglam/mytodo/internal/app"
	"github.com/idilsaglam/mytodo/internal/listctl"
	"github.com/idilsaglam/mytodo/internal/model"
	"github.com/idilsaglam/mytodo/internal/ui"
)

func (r *runner) todoList(ctx context.Context, args []string) int {
	fs := r.flags("ls")
	filter := fs.String("filter", "all", "all | completed | pending")
	if _, err := parseArgs(fs, args); err != nil {
		return ExitUsage
	}
	f, err := listctl.ParseFilter(*filter)
	if err != nil {
		ui.Fail(r.Stderr, err.Error())
		return ExitUsage
	}
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	lc := r.App.Todos()
	if _, err := lc.Refresh(ctx); err != nil {
		return r.report(err)
	}

	s := lc.Stats()
	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), s.Completed,
		t.Pending.Render(t.SymPending), s.Pending,
		t.Accent.Render("Total"), s.Total,
	)

	lines := []string{header, t.Muted.Render(ui.ProgressBar(s.Completed, s.Total, 28)), ""}
	if r.opt.Group && f == listctl.All {
		lines = append(lines, groupLines(lc.Items())...)
	} else {
		lines = append(lines, orNone(todoLines(lc.Items(), f), "no items")...)
	}
	lines = append(lines, "", t.Muted.Render("Tip: add with `mytodo add \"Buy milk\" -d \"2 liters\"`"))
	ui.Panel(r.Stdout, lines)
	return ExitOK
}

func (r *runner) todoAdd(ctx context.Context, args []string) int {
	fs := r.flags("add")
	desc := fs.String("d", "", "description")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return ExitUsage
	}
	if len(pos) == 0 {
		return r.usage("add <title...> -d <description>")
	}
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	fc := app.TodoForm(r.App.Todos())
	fc.MustSet("title", strings.Join(pos, " "))
	fc.MustSet("description", *desc)
	if _, err := fc.Submit(ctx); err != nil {
		return r.report(err)
	}
	ui.OK(r.Stdout, "added")
	return ExitOK
}

func (r *runner) todoEdit(ctx context.Context, args []string) int {
	fs := r.flags("edit")
	title := fs.String("t", "", "new title")
	desc := fs.String("d", "", "new description")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return ExitUsage
	}
	n, ok := r.index("edit", pos)
	if !ok {
		return ExitUsage
	}
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	lc := r.App.Todos()
	td, code, ok := pick(ctx, r, lc, n, "ls")
	if !ok {
		return code
	}
	fc := app.TodoForm(lc)
	fc.LoadForEdit(td.ID, td.Fields())
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			fc.MustSet("title", *title)
		case "d":
			fc.MustSet("description", *desc)
		}
	})
	if _, err := fc.Submit(ctx); err != nil {
		return r.report(err)
	}
	ui.OK(r.Stdout, "saved")
	return ExitOK
}

func (r *runner) todoDone(ctx context.Context, args []string) int {
	n, ok := r.index("done", args)
	if !ok {
		return ExitUsage
	}
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	lc := r.App.Todos()
	td, code, ok := pick(ctx, r, lc, n, "ls")
	if !ok {
		return code
	}
	next, err := lc.ToggleFlag(ctx, td.ID)
	if err != nil {
		return r.report(err)
	}
	if next.Completed {
		ui.OK(r.Stdout, "marked as done")
	} else {
		ui.OK(r.Stdout, "marked as pending")
	}
	return ExitOK
}

func (r *runner) todoRemove(ctx context.Context, args []string) int {
	n, ok := r.index("rm", args)
	if !ok {
		return ExitUsage
	}
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	lc := r.App.Todos()
	td, code, ok := pick(ctx, r, lc, n, "ls")
	if !ok {
		return code
	}
	if err := lc.Delete(ctx, td.ID); err != nil {
		return r.report(err)
	}
	ui.OK(r.Stdout, "removed")
	return ExitOK
}

func (r *runner) todoShow(ctx context.Context, args []string) int {
	n, ok := r.index("show", args)
	if !ok {
		return ExitUsage
	}
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	td, code, ok := pick(ctx, r, r.App.Todos(), n, "ls")
	if !ok {
		return code
	}
	t := ui.Current()
	desc := td.Description
	if strings.TrimSpace(desc) == "" {
		desc = t.Muted.Render("No description provided")
	}
	status := t.Pending.Render(td.Status())
	if td.Completed {
		status = t.Success.Render(td.Status())
	}
	ui.Panel(r.Stdout, []string{
		t.Title.Render("Info ToDo"),
		"",
		t.Accent.Render("Title:       ") + td.Title,
		t.Accent.Render("Description: ") + desc,
		t.Accent.Render("Status:      ") + status,
	})
	return ExitOK
}

// -------------- rendering helpers --------------

func todoLines(items []model.Todo, f listctl.Filter) []string {
	t := ui.Current()
	var out []string
	for i, it := range items {
		if (f == listctl.Completed && !it.Completed) || (f == listctl.Pending && it.Completed) {
			continue
		}
		box, style := t.BoxUnchecked, t.Muted
		if it.Completed {
			box, style = t.BoxChecked, t.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			t.Muted.Render(fmt.Sprintf("%2d.", i+1)), style.Render(box), truncate(it.Title, 80)))
	}
	return out
}

func groupLines(items []model.Todo) []string {
	t := ui.Current()
	lines := []string{t.Accent.Render("Pending")}
	lines = append(lines, orNone(todoLines(items, listctl.Pending), "(none)")...)
	lines = append(lines, "", t.Accent.Render("Done"))
	lines = append(lines, orNone(todoLines(items, listctl.Completed), "(none)")...)
	return lines
}

func orNone(lines []string, empty string) []string {
	if len(lines) == 0 {
		return []string{ui.Current().Muted.Render(empty)}
	}
	return lines
}
