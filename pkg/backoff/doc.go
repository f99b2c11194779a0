// Package backoff provides retry delay strategies shared by the retry
// processor and the webhook delivery channel.
package backoff
