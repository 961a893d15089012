package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSessionConflict signals an already-open checkpoint session for a scope.
	ErrSessionConflict = errors.New("session already open for scope")
	// ErrScopeBusy signals a scope lock that could not be acquired in time.
	ErrScopeBusy = errors.New("scope is locked by another operation")
)
