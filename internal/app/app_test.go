package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/mytodo/internal/api/apitest"
	"github.com/idilsaglam/mytodo/internal/app"
	"github.com/idilsaglam/mytodo/internal/config"
	"github.com/idilsaglam/mytodo/internal/model"
	"github.com/idilsaglam/mytodo/internal/session"
)

func newApp(t *testing.T, srv *apitest.Server) *app.App {
	t.Helper()
	cfg := config.Config{
		APIURL:       srv.URL,
		RecipeAPIURL: srv.URL,
		Timeout:      5 * time.Second,
		Home:         t.TempDir(),
	}
	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	return a
}

func TestScenario_LoginPersistsSession(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("budi", "budi@example.com", "rahasia")
	a := newApp(t, srv)
	ctx := context.Background()

	st, err := a.Start()
	require.NoError(t, err)
	assert.Equal(t, session.RouteAnonymous, st.Route)

	st, err = a.Login(ctx, st, "budi", "rahasia")
	require.NoError(t, err)
	assert.True(t, st.Authenticated())

	s, err := a.Session.Load()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, s.IsValid(time.Now().Add(47*time.Hour)))

	// a second process over the same home starts authenticated
	again, err := app.New(a.Config, nil)
	require.NoError(t, err)
	st2, err := again.Start()
	require.NoError(t, err)
	assert.True(t, st2.Authenticated())
}

func TestScenario_FetchWithoutSessionRoutesAnonymous(t *testing.T) {
	srv := apitest.New(t)
	a := newApp(t, srv)

	_, err := a.Todos().Refresh(context.Background())
	require.Error(t, err)

	st, ok := a.Expire(session.State{Route: session.RouteAuthenticated}, err)
	assert.True(t, ok)
	assert.Equal(t, session.RouteAnonymous, st.Route)
}

func TestScenario_RejectedTokenIsCleared(t *testing.T) {
	srv := apitest.New(t)
	a := newApp(t, srv)
	_, err := a.Session.Save("revoked")
	require.NoError(t, err)

	_, err = a.Todos().Refresh(context.Background())
	st, ok := a.Expire(session.State{Route: session.RouteAuthenticated}, err)
	assert.True(t, ok)
	assert.False(t, st.Authenticated())

	s, err := a.Session.Load()
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestExpire_OtherErrors(t *testing.T) {
	a := newApp(t, apitest.New(t))
	st := session.State{Route: session.RouteAuthenticated}
	got, ok := a.Expire(st, assert.AnError)
	assert.False(t, ok)
	assert.Equal(t, st, got)
}

func loggedIn(t *testing.T) (*apitest.Server, *app.App) {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("budi", "budi@example.com", "rahasia")
	a := newApp(t, srv)
	_, err := a.Session.Save(srv.IssueToken("budi"))
	require.NoError(t, err)
	return srv, a
}

func TestTodoForm_CreateMergesOnce(t *testing.T) {
	srv, a := loggedIn(t)
	srv.SeedTodos("budi", model.Todo{ID: "abc123", Title: "Old"})
	ctx := context.Background()

	list := a.Todos()
	_, err := list.Refresh(ctx)
	require.NoError(t, err)

	f := app.TodoForm(list)
	require.NoError(t, f.Set("title", "Buy milk"))
	require.NoError(t, f.Set("description", "2L"))
	created, err := f.Submit(ctx)
	require.NoError(t, err)

	items := list.Items()
	require.Len(t, items, 2)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, model.Stats{Total: 2, Completed: 0, Pending: 2}, list.Stats())
}

func TestTodoForm_Edit(t *testing.T) {
	srv, a := loggedIn(t)
	srv.SeedTodos("budi", model.Todo{ID: "abc123", Title: "Old", Description: "d"})
	ctx := context.Background()
	list := a.Todos()
	_, err := list.Refresh(ctx)
	require.NoError(t, err)

	td, _ := list.Find("abc123")
	f := app.TodoForm(list)
	f.LoadForEdit(td.ID, td.Fields())
	require.NoError(t, f.Set("title", "New"))
	_, err = f.Submit(ctx)
	require.NoError(t, err)

	got, _ := list.Find("abc123")
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "New", srv.Todos("budi")[0].Title)
}

func TestRecipes_FavoriteToggleIsPersisted(t *testing.T) {
	srv, a := loggedIn(t)
	id := srv.SeedRecipe("Soto", []string{"chicken"}, []string{"boil"})
	ctx := context.Background()

	list := a.Recipes()
	_, err := list.Refresh(ctx)
	require.NoError(t, err)

	r, err := list.ToggleFlag(ctx, id)
	require.NoError(t, err)
	assert.True(t, r.Favorite)
	assert.True(t, srv.RecipeFavorite(id))
	assert.True(t, a.Favorites.Has(id))

	// a new screen instance marks it from the stored set
	again, err := app.New(a.Config, nil)
	require.NoError(t, err)
	fresh := again.Recipes()
	items, err := fresh.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Favorite)
	assert.Equal(t, 1, fresh.Stats().Completed)
}

func TestRecipeForm_UploadsImage(t *testing.T) {
	srv, a := loggedIn(t)
	ctx := context.Background()
	img := filepath.Join(t.TempDir(), "soto.jpg")
	require.NoError(t, os.WriteFile(img, []byte("JPEG"), 0o600))

	list := a.Recipes()
	_, err := list.Refresh(ctx)
	require.NoError(t, err)

	f := a.RecipeForm(list)
	require.NoError(t, f.Set("name", "Soto"))
	require.NoError(t, f.Set("ingredients", "chicken"))
	require.NoError(t, f.Set("steps", "boil"))
	require.NoError(t, f.Set("image", img))
	created, err := f.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Soto", created.Label())
	require.NotEmpty(t, created.ImageURL)
	assert.Equal(t, []byte("JPEG"), srv.Upload(created.ImageURL))
	assert.Len(t, list.Items(), 1)
}

func TestRecipeForm_EditMergesDraft(t *testing.T) {
	srv, a := loggedIn(t)
	id := srv.SeedRecipe("Soto", []string{"chicken"}, []string{"boil"})
	ctx := context.Background()
	list := a.Recipes()
	_, err := list.Refresh(ctx)
	require.NoError(t, err)

	r, _ := list.Find(id)
	f := a.RecipeForm(list)
	f.LoadForEdit(r.ID, r.Fields())
	require.NoError(t, f.Set("name", "Soto Ayam"))
	got, err := f.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID, "recipe service sends no item back; local copy is patched")
	assert.Equal(t, "Soto Ayam", got.Label())
	assert.Equal(t, "chicken", got.Ingredients.String())
}

func TestRecipeForm_MissingImage(t *testing.T) {
	_, a := loggedIn(t)
	f := a.RecipeForm(a.Recipes())
	require.NoError(t, f.Set("name", "x"))
	require.NoError(t, f.Set("ingredients", "y"))
	require.NoError(t, f.Set("steps", "z"))
	require.NoError(t, f.Set("image", filepath.Join(t.TempDir(), "missing.jpg")))

	_, err := f.Submit(context.Background())
	assert.ErrorContains(t, err, "open image")
}
