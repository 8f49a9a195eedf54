// Package apperr is the client's error taxonomy: local validation failures,
// transport failures and server rejections. All of them end up as a
// user-facing alert.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	Validation Kind = iota + 1
	Transport
	Server
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Transport:
		return "transport"
	case Server:
		return "server"
	}
	return "unknown"
}

// FieldError is one failed field check.
type FieldError struct {
	Field   string
	Message string
}

type Error struct {
	Kind    Kind
	Op      string // e.g. "create todo"
	Status  int    // HTTP status for Server errors
	Message string // user-facing text
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, "status %d: ", e.Status)
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidation builds a Validation error from field failures.
func NewValidation(op string, fields ...FieldError) *Error {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	return &Error{Kind: Validation, Op: op, Message: strings.Join(msgs, "; "), Fields: fields}
}

func NewTransport(op string, err error) *Error {
	return &Error{Kind: Transport, Op: op, Message: "Failed to connect to server", Err: err}
}

// NewServer uses msg when the server sent one, fallback otherwise.
func NewServer(op string, status int, msg, fallback string) *Error {
	if strings.TrimSpace(msg) == "" {
		msg = fallback
	}
	return &Error{Kind: Server, Op: op, Status: status, Message: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message returns the text to show the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
