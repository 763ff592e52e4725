package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure; the HTTP layer maps each kind to a status.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindPermission  Kind = "permission"
	KindNotFound    Kind = "not_found"
	KindDuplicate   Kind = "duplicate"
	KindRateLimited Kind = "rate_limited"
	KindInternal    Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func PermissionError(format string, args ...any) error {
	return newError(KindPermission, format, args...)
}

func NotFoundError(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func DuplicateError(format string, args ...any) error {
	return newError(KindDuplicate, format, args...)
}

func RateLimitError(format string, args ...any) error {
	return newError(KindRateLimited, format, args...)
}

func internalError(op string, err error) error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// KindOf returns the kind of a service error; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Something went wrong"
}

// passThrough keeps typed errors raised inside a transaction closure and wraps
// anything else as internal.
func passThrough(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return internalError(op, err)
}
