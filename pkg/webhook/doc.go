// Package webhook delivers notification payloads to HTTP callback endpoints.
//
// A Sender performs one signed JSON POST per call; it classifies failures as
// permanent or temporary and protects consistently failing endpoints with a
// circuit breaker. Retrying is deliberately left to the caller: the delivery
// engine owns the retry schedule, so a failed send here is reported once and
// not repeated internally.
//
// The Channel type adapts a Sender to the delivery engine's channel interface
// for devices whose address is a callback URL (web clients, partner
// integrations).
//
// When a signing secret is configured, each request carries:
//
//	X-Notify-Signature: HMAC-SHA256 hex signature
//	X-Notify-Timestamp: Unix timestamp the signature was created at
//	X-Notify-ID:        unique request identifier
//
// The signature is HMAC-SHA256(secret, timestamp + "." + body). Receivers
// verify it with VerifySignature.
package webhook
