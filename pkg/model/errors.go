package model

import "errors"

// Error represents a domain error from namespace operations.
//
// These are business-logic errors (missing container, occupied path, etc.)
// as opposed to infrastructure errors from the store backend, which are
// wrapped and propagated as-is. The API layer translates Error codes into
// CDMI/HTTP status codes.
type Error struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the namespace path related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a namespace error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested entry doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrNoSuchCollection indicates an operation referenced a container
	// path that does not resolve to an existing collection
	ErrNoSuchCollection

	// ErrCollectionConflict indicates the target path is already occupied
	// by a collection
	ErrCollectionConflict

	// ErrResourceConflict indicates the target path is already occupied
	// by a resource
	ErrResourceConflict

	// ErrUniqueViolation indicates a generic duplicate key in an adjacent
	// subsystem (e.g., a duplicate group id)
	ErrUniqueViolation

	// ErrIndexInconsistent indicates a secondary-index write failed after
	// the primary entity write succeeded. The entity is reachable by path
	// but not by id (or vice versa); operators must reconcile. There is no
	// cross-keyspace transaction to roll back.
	ErrIndexInconsistent

	// ErrInvalidArgument indicates invalid parameters were provided
	ErrInvalidArgument
)

// CodeOf returns the ErrorCode of err, or ok=false for non-domain errors.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

func errNoSuchCollection(path string) *Error {
	return &Error{Code: ErrNoSuchCollection, Message: "no such collection", Path: path}
}

func errCollectionConflict(path string) *Error {
	return &Error{Code: ErrCollectionConflict, Message: "collection already exists", Path: path}
}

func errResourceConflict(path string) *Error {
	return &Error{Code: ErrResourceConflict, Message: "resource already exists", Path: path}
}

func errNotFound(what, path string) *Error {
	return &Error{Code: ErrNotFound, Message: what + " not found", Path: path}
}
