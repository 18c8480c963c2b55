package ledger

import (
	"errors"
	"fmt"
)

// Kind is the closed set of ways a contract operation can fail.
// Callers branch on Kind; Message is passed through to the invoker verbatim.
type Kind string

const (
	KindAlreadyExists   Kind = "AlreadyExists"
	KindNotFound        Kind = "NotFound"
	KindUnauthorized    Kind = "Unauthorized"
	KindForbidden       Kind = "Forbidden"
	KindInvalidArgument Kind = "InvalidArgument"
	KindInternal        Kind = "Internal"
)

// Error is returned by every failing contract operation.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the Kind of err, or "" if err is not a contract error.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

func errAlreadyExists(id string) error {
	return newError(KindAlreadyExists, "The degree %s already exists", id)
}

func errNotFound(id string) error {
	return newError(KindNotFound, "The degree %s does not exist", id)
}

func errForbidden(id, university string) error {
	return newError(KindForbidden, "The degree %s does not originate from university <%s>.", id, university)
}
