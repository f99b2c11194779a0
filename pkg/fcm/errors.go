package fcm

import "errors"

var (
	ErrMissingCredentials  = errors.New("firebase credentials path not provided")
	ErrCredentialsNotFound = errors.New("firebase credentials file not found")
	ErrFailedToInitClient  = errors.New("failed to initialize firebase messaging client")
)
