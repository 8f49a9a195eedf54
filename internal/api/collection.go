package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/idilsaglam/mytodo/internal/model"
)

// Collection is one REST resource: GET/POST on the path, PUT/DELETE on
// path/:id.
type Collection[T any] struct {
	c    *Client
	path string
	noun string

	flagPath func(id model.ID) string
	flagBody func(v bool) any
}

// Todos is /api/todos. The flag is "completed".
func Todos(c *Client) *Collection[model.Todo] {
	col := &Collection[model.Todo]{c: c, path: "/api/todos", noun: "todo"}
	col.flagPath = col.itemPath
	col.flagBody = func(v bool) any { return map[string]bool{"completed": v} }
	return col
}

// Recipes is /api/recipes. The flag is "favorite" and has its own endpoint.
func Recipes(c *Client) *Collection[model.Recipe] {
	col := &Collection[model.Recipe]{c: c, path: "/api/recipes", noun: "recipe"}
	col.flagPath = func(id model.ID) string { return col.itemPath(id) + "/favorite" }
	col.flagBody = func(v bool) any { return map[string]bool{"isFavorite": v} }
	return col
}

func (col *Collection[T]) itemPath(id model.ID) string {
	return col.path + "/" + url.PathEscape(id.String())
}

func (col *Collection[T]) List(ctx context.Context) ([]T, error) {
	var out envelope[[]T]
	err := col.c.do(ctx, call{
		op: "list " + col.noun + "s", method: http.MethodGet, path: col.path,
		auth: true, fallback: "Error fetching " + col.noun + "s",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []T{}
	}
	return out.Data, nil
}

func (col *Collection[T]) Create(ctx context.Context, fields any) (T, error) {
	return col.send(ctx, "add "+col.noun, http.MethodPost, col.path, fields, "Error adding "+col.noun)
}

// Update returns the server's copy of the item. It is the zero T when the
// server answers without one.
func (col *Collection[T]) Update(ctx context.Context, id model.ID, fields any) (T, error) {
	return col.send(ctx, "edit "+col.noun, http.MethodPut, col.itemPath(id), fields, "Error editing "+col.noun)
}

func (col *Collection[T]) SetFlag(ctx context.Context, id model.ID, v bool) (T, error) {
	return col.send(ctx, "update "+col.noun, http.MethodPut, col.flagPath(id), col.flagBody(v), "Error updating "+col.noun)
}

func (col *Collection[T]) Delete(ctx context.Context, id model.ID) error {
	return col.c.do(ctx, call{
		op: "delete " + col.noun, method: http.MethodDelete, path: col.itemPath(id),
		auth: true, fallback: "Error deleting " + col.noun,
	}, nil)
}

func (col *Collection[T]) send(ctx context.Context, op, method, path string, fields any, fallback string) (T, error) {
	var out envelope[T]
	body, err := jsonBody(fields)
	if err != nil {
		return out.Data, err
	}
	err = col.c.do(ctx, call{
		op: op, method: method, path: path, auth: true,
		body: body, contentType: "application/json", fallback: fallback,
	}, &out)
	return out.Data, err
}
