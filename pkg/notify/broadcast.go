package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danceloop/notifykit/pkg/logger"
)

// BroadcastResult aggregates per-device outcomes of one broadcast.
type BroadcastResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Broadcaster fans a single logical notification out to every device address
// of a user. Attempts run concurrently, bounded by the in-flight cap, and
// the fan-in collects every outcome: a slow or failing device never blocks
// delivery to the others.
//
// The broadcaster does not retry individual device failures; retries happen
// at the notification level in the retry queue.
type Broadcaster struct {
	registry    DeviceRegistry
	sender      ChannelSender
	sendTimeout time.Duration
	sem         chan struct{}
	logger      *slog.Logger
}

// BroadcasterOption configures a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithBroadcasterLogger sets the logger.
func WithBroadcasterLogger(log *slog.Logger) BroadcasterOption {
	return func(b *Broadcaster) {
		if log != nil {
			b.logger = log
		}
	}
}

// WithBroadcastSendTimeout bounds each per-device send.
func WithBroadcastSendTimeout(d time.Duration) BroadcasterOption {
	return func(b *Broadcaster) {
		if d > 0 {
			b.sendTimeout = d
		}
	}
}

// WithMaxInFlightSends caps concurrent sends across all devices so a large
// broadcast cannot overwhelm the gateway. Default is 16.
func WithMaxInFlightSends(n int) BroadcasterOption {
	return func(b *Broadcaster) {
		if n > 0 {
			b.sem = make(chan struct{}, n)
		}
	}
}

// NewBroadcaster creates a broadcaster over the given registry and channel.
func NewBroadcaster(registry DeviceRegistry, sender ChannelSender, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		registry:    registry,
		sender:      sender,
		sendTimeout: 10 * time.Second,
		sem:         make(chan struct{}, 16),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BroadcastToAllDevices attempts one delivery per registered device and
// waits for all outcomes. A user with zero devices yields {0, 1}: the
// broadcast counts as failed, and the orchestrator's fallback path still
// runs.
func (b *Broadcaster) BroadcastToAllDevices(ctx context.Context, userID string, req Request) BroadcastResult {
	addrs, err := b.registry.ListAddresses(ctx, userID)
	if err != nil {
		b.logger.LogAttrs(ctx, slog.LevelWarn, "failed to list device addresses",
			logger.UserID(userID),
			logger.NotificationID(req.ID),
			logger.Error(err),
		)
		return BroadcastResult{Failed: 1}
	}
	if len(addrs) == 0 {
		return BroadcastResult{Failed: 1}
	}

	outcomes := make(chan error, len(addrs))
	var wg sync.WaitGroup
	for _, addr := range addrs {
		wg.Add(1)
		go func(addr DeviceAddress) {
			defer wg.Done()

			b.sem <- struct{}{}
			defer func() { <-b.sem }()

			sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
			defer cancel()

			err := b.sender.Send(sendCtx, addr, req)
			if err != nil {
				b.logger.LogAttrs(ctx, slog.LevelDebug, "device delivery failed",
					logger.UserID(userID),
					logger.NotificationID(req.ID),
					logger.DeviceID(addr.DeviceID),
					logger.Channel(b.sender.Name()),
					logger.Error(err),
				)
			}
			outcomes <- err
		}(addr)
	}
	wg.Wait()
	close(outcomes)

	var res BroadcastResult
	for err := range outcomes {
		if err == nil {
			res.Success++
		} else {
			res.Failed++
		}
	}
	return res
}
