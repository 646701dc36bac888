package firestore

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error wraps a Firestore failure with the operation that produced it and
// a classification derived from the gRPC status code.
type Error struct {
	op               string
	err              error
	notFound         bool
	conflict         bool
	unavailable      bool
	queryUnsupported bool
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.op
	}
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *Error) Unwrap() error { return e.err }

// IsNotFound reports whether the document did not exist.
func (e *Error) IsNotFound() bool { return e.notFound }

// IsConflict reports whether a precondition or uniqueness check failed.
func (e *Error) IsConflict() bool { return e.conflict }

// IsUnavailable reports whether the backend was unreachable or overloaded.
func (e *Error) IsUnavailable() bool { return e.unavailable }

// IsQueryUnsupported reports whether the backend rejected the query shape
// itself, typically because a composite index is missing. Callers use this
// to decide between retrying and falling back to a full collection scan.
func (e *Error) IsQueryUnsupported() bool { return e.queryUnsupported }

func newError(op string, err error) *Error {
	e := &Error{op: op, err: err}
	switch status.Code(err) {
	case codes.NotFound:
		e.notFound = true
	case codes.AlreadyExists, codes.Aborted, codes.FailedPrecondition:
		e.conflict = true
		// FailedPrecondition is also what Firestore returns for a query
		// that needs an index which does not exist.
		if status.Code(err) == codes.FailedPrecondition {
			e.queryUnsupported = true
		}
	case codes.InvalidArgument, codes.Unimplemented:
		e.queryUnsupported = true
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		e.unavailable = true
	}
	return e
}

// WrapError classifies err as a repository error for op. Context
// cancellations pass through untouched so callers can match them directly.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return newError(op, err)
}

// The predicates below match by behaviour, not concrete type, so any
// error exposing the classification methods participates.

// IsNotFound reports whether err carries a not-found classification.
func IsNotFound(err error) bool {
	var e interface{ IsNotFound() bool }
	return errors.As(err, &e) && e.IsNotFound()
}

// IsConflict reports whether err carries a conflict classification.
func IsConflict(err error) bool {
	var e interface{ IsConflict() bool }
	return errors.As(err, &e) && e.IsConflict()
}

// IsUnavailable reports whether err carries an unavailable classification.
func IsUnavailable(err error) bool {
	var e interface{ IsUnavailable() bool }
	return errors.As(err, &e) && e.IsUnavailable()
}

// IsQueryUnsupported reports whether err indicates the query shape was
// rejected by the backend.
func IsQueryUnsupported(err error) bool {
	var e interface{ IsQueryUnsupported() bool }
	return errors.As(err, &e) && e.IsQueryUnsupported()
}
