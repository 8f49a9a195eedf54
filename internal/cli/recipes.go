package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/idilsaglam/mytodo/internal/ui"
)

func (r *runner) recipes(ctx context.Context, args []string) int {
	if len(args) == 0 {
		return r.usage("recipes ls|add|edit|rm|fav|favs")
	}
	if code, ok := r.requireAuth(); !ok {
		return code
	}
	cmd, a := args[0], args[1:]
	switch cmd {
	case "ls":
		return r.recipeList(ctx, false)
	case "favs":
		return r.recipeList(ctx, true)
	case "add":
		return r.recipeSave(ctx, "recipes add", a, false)
	case "edit":
		return r.recipeSave(ctx, "recipes edit", a, true)
	case "rm":
		return r.recipeRemove(ctx, a)
	case "fav":
		return r.recipeFavorite(ctx, a)
	}
	ui.Fail(r.Stderr, "unknown recipes subcommand: "+cmd)
	return ExitUsage
}

func (r *runner) recipeList(ctx context.Context, favsOnly bool) int {
	lc := r.App.Recipes()
	if _, err := lc.Refresh(ctx); err != nil {
		return r.report(err)
	}
	t := ui.Current()
	title := "Recipes"
	if favsOnly {
		title = "Favorite Recipes"
	}
	lines := []string{t.Title.Render(title), ""}
	var body []string
	for i, rc := range lc.Items() {
		if favsOnly && !rc.Favorite {
			continue
		}
		sym := t.Muted.Render(t.SymPlain)
		if rc.Favorite {
			sym = t.Accent.Render(t.SymFavorite)
		}
		body = append(body,
			fmt.Sprintf("%s %s %s", t.Muted.Render(fmt.Sprintf("%2d.", i+1)), sym, truncate(rc.Label(), 60)),
			"      "+t.Muted.Render(truncate(rc.Ingredients.String(), 70)),
		)
	}
	empty := "no recipes"
	if favsOnly {
		empty = "No favorite recipes yet"
	}
	lines = append(lines, orNone(body, empty)...)
	ui.Panel(r.Stdout, lines)
	return ExitOK
}

// recipeSave adds a recipe, or edits the one at the given index.
func (r *runner) recipeSave(ctx context.Context, name string, args []string, edit bool) int {
	fs := r.flags(name)
	vals := map[string]*string{
		"name":        fs.String("n", "", "recipe title"),
		"ingredients": fs.String("i", "", "ingredients"),
		"steps":       fs.String("s", "", "steps"),
		"image":       fs.String("image", "", "image file or URL"),
	}
	flagField := map[string]string{"n": "name", "i": "ingredients", "s": "steps", "image": "image"}
	pos, err := parseArgs(fs, args)
	if err != nil {
		return ExitUsage
	}

	lc := r.App.Recipes()
	fc := r.App.RecipeForm(lc)
	if edit {
		n, ok := r.index(name, pos)
		if !ok {
			return ExitUsage
		}
		rc, code, ok := pick(ctx, r, lc, n, "recipes ls")
		if !ok {
			return code
		}
		fc.LoadForEdit(rc.ID, rc.Fields())
	} else if len(pos) > 0 {
		return r.usage(name + " -n name -i ingredients -s steps [-image path]")
	}

	fs.Visit(func(f *flag.Flag) {
		field := flagField[f.Name]
		fc.MustSet(field, *vals[field])
	})
	if _, err := fc.Submit(ctx); err != nil {
		return r.report(err)
	}
	if edit {
		ui.OK(r.Stdout, "Recipe updated")
	} else {
		ui.OK(r.Stdout, "Recipe added")
	}
	return ExitOK
}

func (r *runner) recipeRemove(ctx context.Context, args []string) int {
	n, ok := r.index("recipes rm", args)
	if !ok {
		return ExitUsage
	}
	lc := r.App.Recipes()
	rc, code, ok := pick(ctx, r, lc, n, "recipes ls")
	if !ok {
		return code
	}
	if err := lc.Delete(ctx, rc.ID); err != nil {
		return r.report(err)
	}
	ui.OK(r.Stdout, "Recipe deleted")
	return ExitOK
}

func (r *runner) recipeFavorite(ctx context.Context, args []string) int {
	n, ok := r.index("recipes fav", args)
	if !ok {
		return ExitUsage
	}
	lc := r.App.Recipes()
	rc, code, ok := pick(ctx, r, lc, n, "recipes ls")
	if !ok {
		return code
	}
	next, err := lc.ToggleFlag(ctx, rc.ID)
	if err != nil {
		return r.report(err)
	}
	if next.Favorite {
		ui.OK(r.Stdout, next.Label()+" added to favorites")
	} else {
		ui.OK(r.Stdout, next.Label()+" removed from favorites")
	}
	return ExitOK
}
