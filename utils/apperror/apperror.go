package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error so handlers can pick a status code without string matching
type Kind string

const (
	KindInternal     Kind = "INTERNAL"
	KindNotFound     Kind = "NOT_FOUND"
	KindValidation   Kind = "VALIDATION"
	KindConflict     Kind = "CONFLICT"
	KindUnauthorized Kind = "UNAUTHORIZED"
)

// Error is an application error carrying a Kind and a client-safe message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) error {
	return New(KindNotFound, message, nil)
}

func Validation(message string) error {
	return New(KindValidation, message, nil)
}

func Conflict(message string) error {
	return New(KindConflict, message, nil)
}

func Unauthorized(message string) error {
	return New(KindUnauthorized, message, nil)
}

// KindOf returns the Kind of the first *Error in the chain, KindInternal otherwise
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err, or fallback for internal errors
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}
