// internal/store/errors.go
package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a store failure. No other error kinds cross the
// store boundary.
type ErrorKind string

const (
	// KindUnavailable covers transport failures; callers may retry.
	KindUnavailable ErrorKind = "UNAVAILABLE"
	// KindUnauthorized covers access-rule rejections.
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	// KindNotFound means the addressed document does not exist.
	KindNotFound ErrorKind = "NOT_FOUND"
)

// Error is the structured failure surfaced by every Backend operation.
type Error struct {
	Kind       ErrorKind
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store %s %s: %s: %v", e.Op, e.Collection, e.Kind, e.Err)
	}
	return fmt.Sprintf("store %s %s: %s", e.Op, e.Collection, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying the same call can succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindUnavailable
}

// NewError builds a store error for one failed operation.
func NewError(kind ErrorKind, op, collection string, err error) *Error {
	return &Error{Kind: kind, Op: op, Collection: collection, Err: err}
}

// KindOf extracts the error kind, or "" for non-store errors.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsNotFound reports whether err is a NotFound store error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsUnavailable reports whether err is an Unavailable store error.
func IsUnavailable(err error) bool {
	return KindOf(err) == KindUnavailable
}

// IsUnauthorized reports whether err is an Unauthorized store error.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}
