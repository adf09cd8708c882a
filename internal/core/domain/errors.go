package domain

import "errors"

var (
	// ErrSessionNotFound indicates no persisted record exists for a session ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionInvalid indicates a persisted session failed revalidation and
	// has been revoked (fail-closed).
	ErrSessionInvalid = errors.New("session invalid")
	// ErrNotAuthenticated indicates an operation that requires an
	// authenticated session was attempted without one.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidTransition indicates an illegal session state machine move.
	ErrInvalidTransition = errors.New("invalid session state transition")
)
