package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Lookup errors
	ErrSessionNotFound = errors.New("session not found")

	// Validation errors
	ErrInvalidUserID = errors.New("user id must not be empty")

	// Session state errors
	ErrAlreadyRunning  = errors.New("session is already running")
	ErrAlreadyFinished = errors.New("session is already finished")
	ErrSessionClosed   = errors.New("session is closed")
	ErrBadPassword     = errors.New("wrong session password")
	ErrNotAParticipant = errors.New("user is not a participant of this session")
	ErrInvalidTeam     = errors.New("team must be red or blue")

	// Authorization errors
	ErrNotHost = errors.New("user is not the host")

	// Store consistency errors
	ErrJoinCodeTaken   = errors.New("join code is in use by an active session")
	ErrVersionConflict = errors.New("session was modified concurrently")
)

// PersistenceError reports a failed store operation
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
