// Package notify implements the delivery orchestration and retry engine for
// application notifications: connection requests, pattern-learning
// achievements, session reminders, and broadcast announcements.
//
// The engine routes a notification through a delivery channel, tracks its
// lifecycle in a durable status store, retries failures with exponential
// backoff up to a kind-specific budget, fans critical notifications out to
// every device a user owns, and falls back to durable per-user storage when
// no channel succeeds.
//
// # Architecture
//
//   - ChannelSender: one delivery transport (gateway push, webhook, in-app).
//   - Orchestrator: decides which channel(s) to try and what happens on failure.
//   - RetryQueue + Processor: durable scheduled retries with backoff.
//   - StatusStore: one durable lifecycle record per notification.
//   - Broadcaster: concurrent fan-out to all of a user's devices.
//   - FallbackStore: the terminal safety net for high/critical notifications.
//
// # Basic Usage
//
//	store, _ := kv.NewFileStore("/data/notify.json")
//	orch := notify.NewOrchestrator(registry, gatewaySender, store)
//
//	ok, err := orch.Deliver(ctx, notify.Request{
//	    TargetUserID: "user-1",
//	    Kind:         notify.KindNewMatch,
//	    Priority:     notify.PriorityHigh,
//	    Title:        "New match",
//	    Body:         "You have a new practice partner",
//	})
//
//	proc := notify.NewProcessor(orch)
//	proc.Start(ctx)
//	defer proc.Stop()
//
// Delivery is at-least-once and local to the process: queue and status
// persistence go through the configured kv.Store, and there is no
// cross-process coordination.
package notify
