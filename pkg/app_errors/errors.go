package apperrors

import "errors"

// Access
var (
	ErrNotOwner        = errors.New("Caller is not the owner")
	ErrMissingIdentity = errors.New("Missing caller identity")
)

// Event creation input
var (
	ErrEmptyTitle      = errors.New("Title cant be empty")
	ErrEmptyLocation   = errors.New("Location cant be empty")
	ErrDateNotFuture   = errors.New("Date must be future")
	ErrInvalidDuration = errors.New("Duration must be positive")
)

// Lookup, window, registration state and gating
var (
	ErrInvalidEventID       = errors.New("Invalid input")
	ErrEventNotFound        = errors.New("Event not found")
	ErrRegistrationClosed   = errors.New("Event duration has elapsed")
	ErrAlreadyRegistered    = errors.New("Already Registered")
	ErrMissingRequiredToken = errors.New("Missing required token")
)

var (
	ErrCollaboratorUnavailable = errors.New("Collaborator unavailable")
	ErrInvalidAddress          = errors.New("Invalid address")
)
