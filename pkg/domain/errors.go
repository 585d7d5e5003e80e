package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrJourneyNotFound is returned when a loader has no journey with the requested ID.
var ErrJourneyNotFound = errors.New("journey not found")

// ErrSessionClosed is returned for transitions on a closed session.
var ErrSessionClosed = errors.New("session closed")

// ErrUnknownStep is returned when an answer targets a key that is not part
// of the current step list.
var ErrUnknownStep = errors.New("unknown step")
