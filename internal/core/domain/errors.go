package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input, such as a
	// non-positive product code or an attribute of the wrong type.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates an import run is already active.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrInvalidTransition indicates a run entry was moved out of a terminal state.
	ErrInvalidTransition = errors.New("invalid run state transition")

	// Remote source errors.

	// ErrTransport indicates the remote source could not be reached after
	// all retry attempts were exhausted.
	ErrTransport = errors.New("transport error")

	// ErrDecode indicates a remote payload could not be parsed.
	// Decode errors are never retried.
	ErrDecode = errors.New("decode error")
)
