// Package nodeerr defines the node's error taxonomy: Decode, NotFound, IO,
// Protocol, Validation, Signing, Config. Each is a typed error carrying a
// reason string, following the shape the teacher uses for its
// ValidationError rather than ad-hoc errors.New calls.
package nodeerr

import (
	"errors"
	"fmt"
)

// Kind identifies which taxonomy bucket an error belongs to.
type Kind string

const (
	Decode     Kind = "decode"
	NotFound   Kind = "not_found"
	IO         Kind = "io"
	Protocol   Kind = "protocol"
	Validation Kind = "validation"
	Signing    Kind = "signing"
	Config     Kind = "config"
)

// Error is a typed node error carrying a taxonomy Kind, a human-readable
// reason, and the underlying cause (if any).
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind with no wrapped cause.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

// Is reports whether err is a *Error of the given kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ne, ok := err.(*Error); ok && ne.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
