// Package apperr defines the error taxonomy shared by the ledger engines.
//
// Every error that leaves an engine carries exactly one kind. Callers test
// the kind with errors.Is against the sentinels below; the transport layer
// maps kinds to status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("not authorized")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage error")
)

// Error is a classified error with a caller-facing message.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Is matches the error kind so errors.Is(err, ErrValidation) works.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed input.
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a caller lacking membership, ownership or participation.
func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Msg: msg}
}

// NotFound reports a missing entity.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

// NotFoundf is NotFound with formatting.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps an underlying store failure. op names the failed step.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Kind: ErrStorage, Msg: op, Err: err}
}

// Message returns the caller-facing message of a classified error, or a
// generic text for anything else so internals never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != ErrStorage {
		return e.Msg
	}
	return "server error"
}

func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
