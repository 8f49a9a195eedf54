package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/idilsaglam/mytodo/internal/api"
	"github.com/idilsaglam/mytodo/internal/form"
	"github.com/idilsaglam/mytodo/internal/listctl"
	"github.com/idilsaglam/mytodo/internal/model"
)

var (
	TodoFields = []form.Field{
		{Name: "title", Label: "Title", Required: true},
		{Name: "description", Label: "Description", Required: true},
	}
	RecipeFields = []form.Field{
		{Name: "name", Label: "Recipe Title", Required: true},
		{Name: "ingredients", Label: "Ingredients", Required: true},
		{Name: "steps", Label: "Steps", Required: true},
		{Name: "image", Label: "Image"},
	}
)

// Todos returns a fresh todo list controller, one per screen.
func (a *App) Todos() *listctl.Controller[model.Todo] {
	return listctl.New[model.Todo](api.Todos(a.Client), a.Logger.With("screen", "todos"))
}

// Recipes returns a recipe list controller whose favorite flags come from
// the local favorites set.
func (a *App) Recipes() *listctl.Controller[model.Recipe] {
	c := listctl.New[model.Recipe](api.Recipes(a.Recipe), a.Logger.With("screen", "recipes"))
	c.SetDecorator(a.Favorites.Mark)
	c.SetFlagHook(a.Favorites.Set)
	return c
}

func TodoForm(list *listctl.Controller[model.Todo]) *form.Controller[model.Todo] {
	return form.New[model.Todo](todoSubmitter{list: list}, TodoFields...)
}

func (a *App) RecipeForm(list *listctl.Controller[model.Recipe]) *form.Controller[model.Recipe] {
	return form.New[model.Recipe](recipeSubmitter{list: list, uploader: a.Recipe}, RecipeFields...)
}

type todoSubmitter struct {
	list *listctl.Controller[model.Todo]
}

func todoBody(d form.Draft) map[string]string {
	return map[string]string{"title": d.Get("title"), "description": d.Get("description")}
}

func (s todoSubmitter) Create(ctx context.Context, d form.Draft) (model.Todo, error) {
	return s.list.Create(ctx, todoBody(d))
}

func (s todoSubmitter) Update(ctx context.Context, id model.ID, d form.Draft) (model.Todo, error) {
	return s.list.Update(ctx, id, todoBody(d), func(t model.Todo) model.Todo {
		t.Title = d.Get("title")
		t.Description = d.Get("description")
		return t
	})
}

type recipeSubmitter struct {
	list     *listctl.Controller[model.Recipe]
	uploader *api.Client
}

// imageURL uploads a local image path. URLs are passed through so an edit
// keeps the current image.
func (s recipeSubmitter) imageURL(ctx context.Context, image string) (string, error) {
	if image == "" || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image, nil
	}
	f, err := os.Open(image)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return s.uploader.Upload(ctx, image, f)
}

func (s recipeSubmitter) body(ctx context.Context, d form.Draft) (map[string]string, error) {
	img, err := s.imageURL(ctx, d.Get("image"))
	if err != nil {
		return nil, err
	}
	name := d.Get("name")
	return map[string]string{
		"name":        name,
		"title":       name,
		"ingredients": d.Get("ingredients"),
		"steps":       d.Get("steps"),
		"imageUrl":    img,
	}, nil
}

func (s recipeSubmitter) Create(ctx context.Context, d form.Draft) (model.Recipe, error) {
	body, err := s.body(ctx, d)
	if err != nil {
		return model.Recipe{}, err
	}
	return s.list.Create(ctx, body)
}

func (s recipeSubmitter) Update(ctx context.Context, id model.ID, d form.Draft) (model.Recipe, error) {
	body, err := s.body(ctx, d)
	if err != nil {
		return model.Recipe{}, err
	}
	return s.list.Update(ctx, id, body, func(r model.Recipe) model.Recipe {
		r.Name = body["name"]
		r.Ingredients = model.StringList{body["ingredients"]}
		r.Steps = model.StringList{body["steps"]}
		r.ImageURL = body["imageUrl"]
		return r
	})
}
