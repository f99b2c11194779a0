// Package kv provides the durable key/value storage used by the notification
// delivery engine for status records, the retry queue snapshot, and
// critical-fallback records.
//
// Three implementations are provided:
//
//   - MemoryStore: process-local, for development and tests.
//   - FileStore: a single JSON file on disk, the default backend on a device
//     where persistence must survive application restarts.
//   - RedisStore: backed by go-redis, for deployments that embed the engine
//     in a server process.
//
// All implementations are safe for concurrent use.
package kv
