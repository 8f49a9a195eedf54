package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/mytodo/internal/model"
)

func TestID_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.ID
	}{
		{"plain string", `"abc123"`, "abc123"},
		{"object id", `{"$oid":"64b7f0c2a1e4d3b2c1a09f8e"}`, "64b7f0c2a1e4d3b2c1a09f8e"},
		{"number", `42`, "42"},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id model.ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestID_UnmarshalBadObjectID(t *testing.T) {
	var id model.ID
	assert.Error(t, json.Unmarshal([]byte(`{"$oid":"nope"}`), &id))
}

func TestRecipe_Decode(t *testing.T) {
	raw := `[
		{"_id":{"$oid":"64b7f0c2a1e4d3b2c1a09f8e"},"name":"Soto","ingredients":["chicken","turmeric"],"steps":"boil"},
		{"_id":"r2","title":"Rendang","ingredients":"beef","steps":["slow","cook"]}
	]`
	var rs []model.Recipe
	require.NoError(t, json.Unmarshal([]byte(raw), &rs))
	require.Len(t, rs, 2)

	assert.Equal(t, model.ID("64b7f0c2a1e4d3b2c1a09f8e"), rs[0].ItemID())
	assert.Equal(t, "Soto", rs[0].Label())
	assert.Equal(t, "chicken, turmeric", rs[0].Ingredients.String())
	assert.Equal(t, "boil", rs[0].Steps.String())

	assert.Equal(t, "Rendang", rs[1].Label())
	assert.Equal(t, "slow, cook", rs[1].Steps.String())
}

func TestCount(t *testing.T) {
	todos := []model.Todo{
		{ID: "1", Completed: true},
		{ID: "2"},
		{ID: "3"},
	}
	s := model.Count(todos)
	assert.Equal(t, model.Stats{Total: 3, Completed: 1, Pending: 2}, s)
}

func TestStats_Patches(t *testing.T) {
	s := model.Stats{}
	s = s.Add(false)
	s = s.Add(true)
	assert.Equal(t, model.Stats{Total: 2, Completed: 1, Pending: 1}, s)

	s = s.Flip(false, true)
	assert.Equal(t, model.Stats{Total: 2, Completed: 2, Pending: 0}, s)

	s = s.Flip(true, true)
	assert.Equal(t, model.Stats{Total: 2, Completed: 2, Pending: 0}, s)

	s = s.Remove(true)
	assert.Equal(t, model.Stats{Total: 1, Completed: 1, Pending: 0}, s)
	assert.Equal(t, s.Total, s.Completed+s.Pending)
}

func TestTodo_WithFlag(t *testing.T) {
	td := model.Todo{ID: "x", Title: "Buy milk"}
	done := td.WithFlag(true)
	assert.True(t, done.Flagged())
	assert.False(t, td.Flagged(), "WithFlag must not mutate the receiver")
	assert.Equal(t, "Completed", done.Status())
	assert.Equal(t, "Pending", td.Status())
}
