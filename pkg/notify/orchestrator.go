package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/danceloop/notifykit/pkg/kv"
	"github.com/danceloop/notifykit/pkg/logger"
)

// Orchestrator is the central delivery component. Per notification it
// decides which channel(s) to try and what to do on failure: immediate
// fallback, enqueue for retry, or durable critical-fallback storage.
//
// An Orchestrator is an explicit, constructed component; create isolated
// instances per test with their own kv store.
type Orchestrator struct {
	registry    DeviceRegistry
	sender      ChannelSender
	inbox       ChannelSender // optional in-app fallback channel
	statuses    *StatusStore
	queue       *RetryQueue
	fallback    *FallbackStore
	broadcaster *Broadcaster
	events      *Events
	logger      *slog.Logger

	sendTimeout   time.Duration
	criticalKinds map[Kind]struct{}
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(log *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithSendTimeout bounds every channel send. Default is 10s.
func WithSendTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.sendTimeout = d
		}
	}
}

// WithCriticalKinds replaces the set of kinds that are always broadcast to
// every device regardless of priority. Default: urgent_announcement and
// connection_request.
func WithCriticalKinds(kinds ...Kind) OrchestratorOption {
	return func(o *Orchestrator) {
		o.criticalKinds = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			o.criticalKinds[k] = struct{}{}
		}
	}
}

// WithInboxFallback sets the in-app notification list channel used as a
// best-effort surface when push delivery is impossible.
func WithInboxFallback(sender ChannelSender) OrchestratorOption {
	return func(o *Orchestrator) {
		o.inbox = sender
	}
}

// WithEventBufferSize sets the per-subscriber delivery-event buffer. Default is 64.
func WithEventBufferSize(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.events = NewEvents(n)
		}
	}
}

// WithBroadcasterOptions forwards options to the internal broadcaster.
func WithBroadcasterOptions(opts ...BroadcasterOption) OrchestratorOption {
	return func(o *Orchestrator) {
		for _, opt := range opts {
			opt(o.broadcaster)
		}
	}
}

// NewOrchestrator creates the delivery engine. The registry and primary
// channel come from the host application; status records, the retry queue,
// and fallback records are persisted through store.
func NewOrchestrator(registry DeviceRegistry, sender ChannelSender, store kv.Store, opts ...OrchestratorOption) *Orchestrator {
	log := slog.Default()

	o := &Orchestrator{
		registry:    registry,
		sender:      sender,
		statuses:    NewStatusStore(store, log),
		queue:       NewRetryQueue(store, log),
		fallback:    NewFallbackStore(store, log),
		broadcaster: NewBroadcaster(registry, sender),
		events:      NewEvents(64),
		logger:      log,
		sendTimeout: 10 * time.Second,
		criticalKinds: map[Kind]struct{}{
			KindUrgentAnnouncement: {},
			KindConnectionRequest:  {},
		},
	}

	for _, opt := range opts {
		opt(o)
	}

	WithBroadcastSendTimeout(o.sendTimeout)(o.broadcaster)
	WithBroadcasterLogger(o.logger)(o.broadcaster)

	return o
}

// Deliver attempts immediate delivery of req and reports whether any channel
// accepted it. Ordinary delivery failures return (false, nil) and drive the
// retry flow; the error is non-nil only for a malformed request.
//
// Delivering an ID whose record is already in a terminal success state is a
// no-op returning true; an expired record returns false. Terminal records
// are never resurrected.
func (o *Orchestrator) Deliver(ctx context.Context, req Request) (bool, error) {
	if err := req.Validate(); err != nil {
		return false, err
	}
	req = req.normalized()

	if rec, err := o.statuses.Get(ctx, req.ID); err == nil {
		if rec.Status.Success() {
			return true, nil
		}
		if rec.Status == StatusExpired {
			return false, nil
		}
	}

	return o.deliver(ctx, req, false), nil
}

// deliver runs one delivery attempt. isRetry suppresses re-enqueueing: the
// processor owns requeue decisions for queued notifications, so duplicate
// queue entries for the same ID cannot arise.
//
// Expiry is checked here, not only in Deliver, so a request whose deadline
// passes while it waits in the retry queue is marked expired instead of
// being sent.
func (o *Orchestrator) deliver(ctx context.Context, req Request, isRetry bool) bool {
	if req.IsExpired(time.Now()) {
		o.markExpired(ctx, req)
		return false
	}

	if err := o.statuses.Save(ctx, req.ID, StatusPending, ""); err != nil {
		o.logStatusError(ctx, req, err)
	}

	if req.Priority == PriorityCritical || o.isCriticalKind(req.Kind) {
		return o.deliverBroadcast(ctx, req, isRetry)
	}
	return o.deliverSingle(ctx, req, isRetry)
}

func (o *Orchestrator) deliverBroadcast(ctx context.Context, req Request, isRetry bool) bool {
	res := o.broadcaster.BroadcastToAllDevices(ctx, req.TargetUserID, req)
	if res.Success > 0 {
		o.markSuccess(ctx, req, StatusDelivered)
		return true
	}

	o.handleFailure(ctx, req, isRetry, "all devices failed")
	return false
}

func (o *Orchestrator) deliverSingle(ctx context.Context, req Request, isRetry bool) bool {
	addr, err := o.registry.PrimaryAddress(ctx, req.TargetUserID)
	if err != nil || addr == nil {
		o.handleFailure(ctx, req, isRetry, ErrNoDevices.Error())
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, o.sendTimeout)
	err = o.sender.Send(sendCtx, *addr, req)
	cancel()

	if err == nil {
		status := StatusSent
		if isRetry {
			// A retry that finally lands is a completed delivery.
			status = StatusDelivered
		}
		o.markSuccess(ctx, req, status)
		return true
	}

	o.handleFailure(ctx, req, isRetry, err.Error())
	return false
}

func (o *Orchestrator) markSuccess(ctx context.Context, req Request, status Status) {
	if err := o.statuses.Save(ctx, req.ID, status, ""); err != nil {
		o.logStatusError(ctx, req, err)
	}

	eventType := EventSent
	if status == StatusDelivered {
		eventType = EventDelivered
	}
	o.events.Publish(Event{Type: eventType, Request: req})

	o.logger.LogAttrs(ctx, slog.LevelInfo, "notification accepted by channel",
		logger.NotificationID(req.ID),
		logger.UserID(req.TargetUserID),
		logger.Kind(string(req.Kind)),
		logger.Channel(o.sender.Name()),
		logger.DeliveryStatus(string(status)),
	)
}

// handleFailure records the failure and applies the orchestration policy:
// enqueue for retry unless low priority or already owned by the processor,
// and persist the critical fallback for high/critical notifications.
func (o *Orchestrator) handleFailure(ctx context.Context, req Request, isRetry bool, errText string) {
	if err := o.statuses.Save(ctx, req.ID, StatusFailed, errText); err != nil {
		o.logStatusError(ctx, req, err)
	}
	o.events.Publish(Event{Type: EventFailed, Request: req, Error: errText})

	o.logger.LogAttrs(ctx, slog.LevelWarn, "notification delivery failed",
		logger.NotificationID(req.ID),
		logger.UserID(req.TargetUserID),
		logger.Kind(string(req.Kind)),
		slog.String("reason", errText),
		slog.Bool("is_retry", isRetry),
	)

	if !isRetry && req.Priority != PriorityLow {
		item := QueuedNotification{
			Request:     req,
			MaxRetries:  req.Kind.MaxRetries(),
			NextRetryAt: time.Now().Add(req.Kind.InitialRetryDelay()),
		}
		if err := o.queue.Enqueue(ctx, item); err != nil {
			o.logger.LogAttrs(ctx, slog.LevelError, "failed to enqueue notification for retry",
				logger.NotificationID(req.ID),
				logger.Error(err),
			)
		}
		o.events.Publish(Event{Type: EventEnqueued, Request: req})
	}

	if req.Priority >= PriorityHigh {
		if err := o.fallback.Persist(ctx, req); err != nil {
			o.logger.LogAttrs(ctx, slog.LevelError, "failed to persist critical fallback record",
				logger.NotificationID(req.ID),
				logger.UserID(req.TargetUserID),
				logger.Error(err),
			)
		}
		// The inbox mirror happens once, on the first failed attempt.
		// Retries reuse the stored item.
		if !isRetry {
			o.deliverToInbox(ctx, req)
		}
	}
}

// markExpired records the terminal expired state without attempting delivery.
func (o *Orchestrator) markExpired(ctx context.Context, req Request) {
	if err := o.statuses.Save(ctx, req.ID, StatusExpired, "scheduled delivery time passed"); err != nil {
		o.logStatusError(ctx, req, err)
	}
	o.events.Publish(Event{Type: EventExpired, Request: req})
}

// deliverToInbox surfaces the notification in the in-app list when push
// delivery is impossible. Best effort only.
func (o *Orchestrator) deliverToInbox(ctx context.Context, req Request) {
	if o.inbox == nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, o.sendTimeout)
	defer cancel()

	if err := o.inbox.Send(sendCtx, DeviceAddress{}, req); err != nil {
		o.logger.LogAttrs(ctx, slog.LevelWarn, "in-app fallback delivery failed",
			logger.NotificationID(req.ID),
			logger.UserID(req.TargetUserID),
			logger.Channel(o.inbox.Name()),
			logger.Error(err),
		)
	}
}

// BroadcastToAllDevices fans req out to every device address of userID and
// reports per-device outcome counts. Unlike Deliver it does not touch the
// status store or retry queue; it is the raw fan-out primitive.
func (o *Orchestrator) BroadcastToAllDevices(ctx context.Context, userID string, req Request) BroadcastResult {
	return o.broadcaster.BroadcastToAllDevices(ctx, userID, req.normalized())
}

// GetPendingCriticalFallback drains and returns the critical-fallback
// notifications stored for userID.
func (o *Orchestrator) GetPendingCriticalFallback(ctx context.Context, userID string) ([]Request, error) {
	return o.fallback.Drain(ctx, userID)
}

// EngineStats is the aggregate view exposed to callers.
type EngineStats struct {
	Stats
	RetryQueueSize int `json:"retry_queue_size"`
}

// GetStats aggregates delivery outcomes and the current retry queue size.
func (o *Orchestrator) GetStats(ctx context.Context) (EngineStats, error) {
	stats, err := o.statuses.Stats(ctx)
	if err != nil {
		return EngineStats{}, err
	}
	return EngineStats{Stats: stats, RetryQueueSize: o.queue.Size()}, nil
}

// Events returns the delivery-event observer for subscription.
func (o *Orchestrator) Events() *Events {
	return o.events
}

// Queue returns the retry queue. Exposed for the processor and tests.
func (o *Orchestrator) Queue() *RetryQueue {
	return o.queue
}

// Statuses returns the delivery status store.
func (o *Orchestrator) Statuses() *StatusStore {
	return o.statuses
}

// Close shuts down the event observer.
func (o *Orchestrator) Close() {
	o.events.Close()
}

func (o *Orchestrator) isCriticalKind(k Kind) bool {
	_, ok := o.criticalKinds[k]
	return ok
}

func (o *Orchestrator) logStatusError(ctx context.Context, req Request, err error) {
	// A status-store write failure must not crash or fail the delivery flow.
	o.logger.LogAttrs(ctx, slog.LevelError, "failed to persist delivery status",
		logger.NotificationID(req.ID),
		logger.Error(err),
	)
}
