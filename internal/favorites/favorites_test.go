package favorites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/mytodo/internal/model"
	"github.com/idilsaglam/mytodo/internal/store/jsonstore"
)

func TestSet_Persists(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(jsonstore.New(dir))
	require.NoError(t, err)

	require.NoError(t, s.Set("b", true))
	require.NoError(t, s.Set("a", true))
	require.NoError(t, s.Set("c", true))
	require.NoError(t, s.Set("c", false))

	again, err := Load(jsonstore.New(dir))
	require.NoError(t, err)
	assert.Equal(t, []model.ID{"a", "b"}, again.IDs())
	assert.True(t, again.Has("a"))
	assert.False(t, again.Has("c"))
}

func TestSet_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "favoriteRecipes.json"), []byte("{"), 0o600))
	s, err := Load(jsonstore.New(dir))
	require.NoError(t, err)
	assert.Empty(t, s.IDs())
}

func TestSet_Mark(t *testing.T) {
	s, err := Load(jsonstore.New(t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, s.Set("r1", true))

	assert.True(t, s.Mark(model.Recipe{ID: "r1"}).Favorite)
	assert.False(t, s.Mark(model.Recipe{ID: "r2"}).Favorite)
	assert.False(t, s.Mark(model.Recipe{ID: "r2", Favorite: true}).Favorite, "server flag is not trusted")

	require.NoError(t, s.Set("r1", false))
	assert.False(t, s.Mark(model.Recipe{ID: "r1", Favorite: true}).Favorite)
}
