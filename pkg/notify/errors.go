package notify

import "errors"

var (
	// ErrMissingTargetUser is returned when a request has no recipient.
	ErrMissingTargetUser = errors.New("notification target user is required")

	// ErrInvalidKind is returned when a request carries an unknown kind.
	ErrInvalidKind = errors.New("invalid notification kind")

	// ErrInvalidPriority is returned when a request carries an unknown priority.
	ErrInvalidPriority = errors.New("invalid notification priority")

	// ErrRecordNotFound is returned when no delivery record exists for an ID.
	ErrRecordNotFound = errors.New("delivery record not found")

	// ErrNoDevices indicates the user has no registered device addresses.
	// It is recorded as the failure reason, never returned to callers.
	ErrNoDevices = errors.New("no devices registered")
)
