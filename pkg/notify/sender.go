package notify

import "context"

// ChannelSender attempts a single delivery to a single address over one
// transport (gateway push, webhook, in-app inbox).
//
// A nil return means the gateway accepted the notification. Any error is an
// ordinary delivery failure: the orchestrator records the error text and
// drives the retry flow; it never propagates the error to callers.
//
// Implementations must be idempotent-safe: retries reuse the same Request.ID,
// so sending the same request twice must not duplicate user-visible output
// beyond what the transport itself allows.
type ChannelSender interface {
	// Name identifies the channel in logs and delivery events.
	Name() string

	// Send attempts one delivery of req to addr.
	Send(ctx context.Context, addr DeviceAddress, req Request) error
}
