// Package favorites persists the ids of favorited recipes.
package favorites

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/idilsaglam/mytodo/internal/model"
	"github.com/idilsaglam/mytodo/internal/store/jsonstore"
)

const storeKey = "favoriteRecipes"

type Store interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
}

type Set struct {
	store Store

	mu  sync.Mutex
	ids map[model.ID]struct{}
}

// Load reads the stored set. A malformed record is treated as empty.
func Load(store Store) (*Set, error) {
	s := &Set{store: store, ids: map[model.ID]struct{}{}}
	var ids []model.ID
	_, err := store.Get(storeKey, &ids)
	if err != nil && !errors.Is(err, jsonstore.ErrMalformed) {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s, nil
}

func (s *Set) Has(id model.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Set adds or removes id and persists the set.
func (s *Set) Set(id model.ID, fav bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fav {
		s.ids[id] = struct{}{}
	} else {
		delete(s.ids, id)
	}
	return s.store.Put(storeKey, s.list())
}

// IDs returns the sorted ids.
func (s *Set) IDs() []model.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

func (s *Set) list() []model.ID {
	out := make([]model.ID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Mark sets the favorite flag of r from the set, whatever the server
// reported. It is the recipe list's decorator.
func (s *Set) Mark(r model.Recipe) model.Recipe {
	return r.WithFlag(s.Has(r.ID))
}
