package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Recipe is an entry of the Recipe App. The backend has served both "name"
// and "title" for the display name.
type Recipe struct {
	ID          ID         `json:"_id"`
	Name        string     `json:"name,omitempty"`
	Title       string     `json:"title,omitempty"`
	Ingredients StringList `json:"ingredients"`
	Steps       StringList `json:"steps"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Favorite    bool       `json:"isFavorite,omitempty"`
}

func (r Recipe) ItemID() ID    { return r.ID }
func (r Recipe) Flagged() bool { return r.Favorite }

func (r Recipe) WithFlag(v bool) Recipe {
	r.Favorite = v
	return r
}

// Label is the display name.
func (r Recipe) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Title
}

func (r Recipe) Fields() map[string]string {
	return map[string]string{
		"name":        r.Label(),
		"ingredients": r.Ingredients.String(),
		"steps":       r.Steps.String(),
		"image":       r.ImageURL,
	}
}

// StringList decodes either a JSON string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var xs []string
	if err := json.Unmarshal(b, &xs); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	*l = xs
	return nil
}

func (l StringList) String() string { return strings.Join(l, ", ") }
