package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"server with payload", NewServer("login", 401, "Invalid password", "Invalid credentials"), "Invalid password"},
		{"server fallback", NewServer("add todo", 500, " ", "Error adding todo"), "Error adding todo"},
		{"transport", NewTransport("list todos", errors.New("dial tcp: refused")), "Failed to connect to server"},
		{"validation", NewValidation("submit", FieldError{"title", "Title is a required field"}), "Title is a required field"},
		{"wrapped", fmt.Errorf("outer: %w", NewServer("x", 400, "bad", "")), "bad"},
		{"plain", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Transport, KindOf(fmt.Errorf("x: %w", NewTransport("op", errors.New("e")))))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("refused")
	err := NewTransport("list todos", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "list todos: Failed to connect to server: refused", err.Error())
}
