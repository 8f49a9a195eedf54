// Package listctl keeps the in-memory copy of a backend collection for one
// screen and merges mutation results into it without re-fetching.
package listctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/idilsaglam/mytodo/internal/model"
)

// ErrNotFound is returned for ids that are not in the local list.
var ErrNotFound = errors.New("item not found")

// Backend is the resource the controller mirrors. *api.Collection[T]
// satisfies it.
type Backend[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, fields any) (T, error)
	Update(ctx context.Context, id model.ID, fields any) (T, error)
	SetFlag(ctx context.Context, id model.ID, v bool) (T, error)
	Delete(ctx context.Context, id model.ID) error
}

// Controller is safe for concurrent use. Network calls run outside the lock,
// so overlapping mutations resolve in arrival order.
//
// Stats are derived on Refresh and patched on every mutation below. They
// stay correct only as long as the list is changed through these methods.
type Controller[T model.Item[T]] struct {
	backend  Backend[T]
	logger   *slog.Logger
	decorate func(T) T
	onFlag   func(id model.ID, v bool) error

	mu     sync.Mutex
	items  []T
	stats  model.Stats
	loaded bool
}

func New[T model.Item[T]](b Backend[T], logger *slog.Logger) *Controller[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller[T]{backend: b, logger: logger}
}

// SetDecorator sets a function applied to every item coming from the
// backend, e.g. to overlay locally stored favorites.
func (c *Controller[T]) SetDecorator(fn func(T) T) { c.decorate = fn }

// SetFlagHook sets a function run after the backend confirms a flag change.
// Its error is logged, not returned.
func (c *Controller[T]) SetFlagHook(fn func(id model.ID, v bool) error) { c.onFlag = fn }

func (c *Controller[T]) apply(it T) T {
	if c.decorate != nil {
		return c.decorate(it)
	}
	return it
}

// Refresh replaces the list with the backend's. On failure a loaded list is
// kept as is and a never-loaded list stays empty.
func (c *Controller[T]) Refresh(ctx context.Context) ([]T, error) {
	items, err := c.backend.List(ctx)
	if err != nil {
		c.mu.Lock()
		if !c.loaded {
			c.items, c.stats = nil, model.Stats{}
		}
		c.mu.Unlock()
		return nil, err
	}
	for i := range items {
		items[i] = c.apply(items[i])
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.stats = model.Count(items)
	c.loaded = true
	return c.snapshot(), nil
}

// Create sends fields and puts the created item first.
func (c *Controller[T]) Create(ctx context.Context, fields any) (T, error) {
	created, err := c.backend.Create(ctx, fields)
	if err != nil {
		return created, err
	}
	if created.ItemID() == "" {
		c.logger.Warn("create returned no item id; list not updated")
		return created, nil
	}
	created = c.apply(created)

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(created.ItemID()); i >= 0 {
		c.removeAt(i)
	}
	c.items = append([]T{created}, c.items...)
	c.stats = c.stats.Add(created.Flagged())
	return created, nil
}

// Update sends fields for id. When the backend answers without the item,
// patch builds the new local copy from the old one.
func (c *Controller[T]) Update(ctx context.Context, id model.ID, fields any, patch func(T) T) (T, error) {
	updated, err := c.backend.Update(ctx, id, fields)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		c.logger.Warn("updated item not in list", "id", id)
		return updated, nil
	}
	old := c.items[i]
	if updated.ItemID() == "" {
		if patch != nil {
			updated = patch(old)
		} else {
			updated = old
		}
	} else {
		// the flag has its own endpoint; an edit never changes it
		updated = c.apply(updated).WithFlag(old.Flagged())
	}
	c.items[i] = updated
	return updated, nil
}

// SetFlag marks id flagged (completed / favorite) or not.
func (c *Controller[T]) SetFlag(ctx context.Context, id model.ID, v bool) (T, error) {
	res, err := c.backend.SetFlag(ctx, id, v)
	if err != nil {
		var zero T
		return zero, err
	}
	if c.onFlag != nil {
		if err := c.onFlag(id, v); err != nil {
			c.logger.Warn("flag hook failed", "id", id, "err", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return res.WithFlag(v), nil
	}
	old := c.items[i]
	next := old.WithFlag(v)
	if res.ItemID() == id {
		next = c.apply(res).WithFlag(v)
	}
	c.items[i] = next
	c.stats = c.stats.Flip(old.Flagged(), v)
	return next, nil
}

// ToggleFlag flips the current local flag of id.
func (c *Controller[T]) ToggleFlag(ctx context.Context, id model.ID) (T, error) {
	cur, ok := c.Find(id)
	if !ok {
		return cur, fmt.Errorf("toggle %s: %w", id, ErrNotFound)
	}
	return c.SetFlag(ctx, id, !cur.Flagged())
}

func (c *Controller[T]) Delete(ctx context.Context, id model.ID) error {
	if err := c.backend.Delete(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		c.removeAt(i)
	}
	return nil
}

// Items returns a copy of the list.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller[T]) Stats() model.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Loaded reports whether a Refresh has ever succeeded.
func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Controller[T]) Find(id model.ID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// At returns the item at a 1-based position.
func (c *Controller[T]) At(pos int) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 1 || pos > len(c.items) {
		var zero T
		return zero, fmt.Errorf("index out of range: have %d, got %d", len(c.items), pos)
	}
	return c.items[pos-1], nil
}

// Filter selects a subset for display.
type Filter int

const (
	All Filter = iota
	Completed
	Pending
)

func (f Filter) String() string {
	switch f {
	case Completed:
		return "completed"
	case Pending:
		return "pending"
	}
	return "all"
}

// Next cycles all -> completed -> pending -> all.
func (f Filter) Next() Filter { return (f + 1) % 3 }

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return All, nil
	case "completed", "done":
		return Completed, nil
	case "pending":
		return Pending, nil
	}
	return All, fmt.Errorf("unknown filter %q", s)
}

func (c *Controller[T]) Filter(f Filter) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if f == All || (f == Completed) == it.Flagged() {
			out = append(out, it)
		}
	}
	return out
}

// callers hold mu

func (c *Controller[T]) index(id model.ID) int {
	for i, it := range c.items {
		if it.ItemID() == id {
			return i
		}
	}
	return -1
}

func (c *Controller[T]) removeAt(i int) {
	c.stats = c.stats.Remove(c.items[i].Flagged())
	c.items = append(c.items[:i:i], c.items[i+1:]...)
}

func (c *Controller[T]) snapshot() []T {
	return append([]T(nil), c.items...)
}
