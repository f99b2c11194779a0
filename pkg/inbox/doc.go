// Package inbox keeps the in-app notification list.
//
// Items land here either directly from application code or through the
// delivery engine's fallback channel when push delivery is impossible. The
// list is per user, newest first, with read tracking and unread counts.
//
// Storage is an interface; MemoryStorage serves development and tests, and
// host applications plug in their own durable implementation.
package inbox
