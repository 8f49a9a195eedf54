// Package form holds the draft of a create/edit form and submits it.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/idilsaglam/mytodo/internal/apperr"
	"github.com/idilsaglam/mytodo/internal/model"
)

// ErrBusy is returned by Submit while a previous submit is in flight.
var ErrBusy = errors.New("form: submit already in progress")

type State int

const (
	Idle State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	}
	return "idle"
}

type Field struct {
	Name     string
	Label    string
	Required bool
}

// Draft maps field names to their current values.
type Draft map[string]string

func (d Draft) Get(name string) string { return strings.TrimSpace(d[name]) }

// Submitter performs the network side of a submit.
type Submitter[T any] interface {
	Create(ctx context.Context, d Draft) (T, error)
	Update(ctx context.Context, id model.ID, d Draft) (T, error)
}

type Controller[T any] struct {
	fields []Field
	submit Submitter[T]

	mu    sync.Mutex
	draft Draft
	bound model.ID
	state State
}

func New[T any](s Submitter[T], fields ...Field) *Controller[T] {
	return &Controller[T]{fields: fields, submit: s, draft: Draft{}}
}

func (c *Controller[T]) Fields() []Field { return append([]Field(nil), c.fields...) }

func (c *Controller[T]) field(name string) (Field, bool) {
	for _, f := range c.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Set changes one field and opens the form if it was idle.
func (c *Controller[T]) Set(name, value string) error {
	if _, ok := c.field(name); !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft[name] = value
	if c.state == Idle {
		c.state = Editing
	}
	return nil
}

// MustSet is Set for field names fixed in code. It panics on an unknown
// field.
func (c *Controller[T]) MustSet(name, value string) {
	if err := c.Set(name, value); err != nil {
		panic(err)
	}
}

// LoadForEdit copies an existing item's values and binds its id so the next
// Submit updates instead of creating.
func (c *Controller[T]) LoadForEdit(id model.ID, values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{}
	for _, f := range c.fields {
		if v, ok := values[f.Name]; ok {
			c.draft[f.Name] = v
		}
	}
	c.bound = id
	c.state = Editing
}

// Cancel clears the draft and the binding. No network call.
func (c *Controller[T]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller[T]) reset() {
	c.draft = Draft{}
	c.bound = ""
	c.state = Idle
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Bound returns the id being edited.
func (c *Controller[T]) Bound() (model.ID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bound, c.bound != ""
}

func (c *Controller[T]) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(Draft, len(c.draft))
	for k, v := range c.draft {
		out[k] = v
	}
	return out
}

func (c *Controller[T]) Value(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft[name]
}

// Validate runs the field checks without touching state.
func (c *Controller[T]) Validate() []apperr.FieldError {
	return Validate(c.Draft(), c.checks()...)
}

func (c *Controller[T]) checks() []ValidationFn {
	var fns []ValidationFn
	for _, f := range c.fields {
		if f.Required {
			fns = append(fns, ValidatePresence(f))
		}
	}
	return fns
}

// Submit validates, then creates or updates. On success the draft is
// cleared and the form is idle again; on failure it stays in editing with
// the draft intact.
func (c *Controller[T]) Submit(ctx context.Context) (T, error) {
	var zero T
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return zero, ErrBusy
	}
	draft := make(Draft, len(c.draft))
	for k, v := range c.draft {
		draft[k] = strings.TrimSpace(v)
	}
	if errs := Validate(draft, c.checks()...); len(errs) > 0 {
		c.state = Editing
		c.mu.Unlock()
		return zero, apperr.NewValidation("submit", errs...)
	}
	id := c.bound
	c.state = Submitting
	c.mu.Unlock()

	var (
		res T
		err error
	)
	if id != "" {
		res, err = c.submit.Update(ctx, id, draft)
	} else {
		res, err = c.submit.Create(ctx, draft)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Editing
		return zero, err
	}
	c.reset()
	return res, nil
}
