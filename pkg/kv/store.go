package kv

import "context"

// Store is a minimal durable key/value contract.
//
// Values are opaque byte slices; callers own serialization. ListKeys returns
// every key with the given prefix in unspecified order.
type Store interface {
	// Get retrieves the value for key. Returns ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// ListKeys returns all keys starting with prefix.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}
