// Package httpapi exposes the delivery engine over HTTP.
//
// The router serves delivery submission, per-user broadcast, delivery
// statistics, the critical-fallback drain, the in-app inbox, and a
// server-sent-events stream of delivery lifecycle events. It is an
// operational surface for the host application and its tooling, not a
// public API; authentication is the host's concern.
package httpapi
