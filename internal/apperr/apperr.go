// Package apperr defines the error taxonomy shared by the service and API layers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error
type Kind uint8

const (
	KindServer Kind = iota
	KindValidation
	KindAuth
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "server"
	}
}

// Error is an error with a kind and a message safe to show to the caller
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidCredentials is returned by login for an unknown email or a wrong password.
	ErrInvalidCredentials = &Error{Kind: KindAuth, Message: "invalid credentials"}
	// ErrUnauthorized is returned when a bearer token is missing or rejected.
	ErrUnauthorized = &Error{Kind: KindAuth, Message: "please authenticate"}
)

// Validation returns a ValidationError
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a NotFoundError
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized wraps the reason a token was rejected
func Unauthorized(cause error) error {
	return &Error{Kind: KindAuth, Message: ErrUnauthorized.Message, Err: cause}
}

// Server wraps an unexpected failure. The message stays generic, the cause is kept for logs.
func Server(cause error) error {
	return &Error{Kind: KindServer, Message: "internal server error", Err: cause}
}

// KindOf reports the kind of err. Untyped errors are server errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// Message returns the caller-facing message of err
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// Is reports whether target is an *Error with the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}
