package kv

import "errors"

var (
	// ErrKeyNotFound is returned when a key does not exist in the store.
	ErrKeyNotFound = errors.New("key not found")

	// ErrFailedToParseRedisConnString is returned when the redis connection URL is invalid.
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")

	// ErrRedisNotReady is returned when the redis server cannot be reached
	// within the configured retry budget.
	ErrRedisNotReady = errors.New("redis server is not ready")
)
