package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danceloop/notifykit/pkg/backoff"
	"github.com/danceloop/notifykit/pkg/logger"
)

// Processor is the supervised periodic task that scans the retry queue for
// due notifications and resubmits them to the orchestrator.
//
// Two loops run: a slow one for ordinary kinds and a fast one for
// time-critical kinds. The processor owns all requeue decisions for items
// it resubmits; the orchestrator never enqueues on a retry attempt.
type Processor struct {
	orch *Orchestrator

	slowInterval time.Duration
	fastInterval time.Duration
	slowBackoff  backoff.Strategy
	fastBackoff  backoff.Strategy
	logger       *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorLogger sets the logger.
func WithProcessorLogger(log *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if log != nil {
			p.logger = log
		}
	}
}

// WithIntervals sets the slow and fast loop periods.
// Defaults: 30s slow, 5s fast.
func WithIntervals(slow, fast time.Duration) ProcessorOption {
	return func(p *Processor) {
		if slow > 0 {
			p.slowInterval = slow
		}
		if fast > 0 {
			p.fastInterval = fast
		}
	}
}

// WithBackoffBases sets the exponential backoff bases: the delay after the
// n-th failed retry is base * 2^n. Defaults: 60s slow, 1s fast.
func WithBackoffBases(slow, fast time.Duration) ProcessorOption {
	return func(p *Processor) {
		if slow > 0 {
			p.slowBackoff = backoff.Exponential{InitialInterval: slow, Multiplier: 2}
		}
		if fast > 0 {
			p.fastBackoff = backoff.Exponential{InitialInterval: fast, Multiplier: 2}
		}
	}
}

// NewProcessor creates a processor for the orchestrator's retry queue.
func NewProcessor(orch *Orchestrator, opts ...ProcessorOption) *Processor {
	p := &Processor{
		orch:         orch,
		slowInterval: 30 * time.Second,
		fastInterval: 5 * time.Second,
		slowBackoff:  backoff.Exponential{InitialInterval: time.Minute, Multiplier: 2},
		fastBackoff:  backoff.Exponential{InitialInterval: time.Second, Multiplier: 2},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the retry loops. Starting an already-running processor
// replaces the running loops rather than duplicating them.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(2)
	go p.loop(runCtx, p.slowInterval, false)
	go p.loop(runCtx, p.fastInterval, true)

	p.logger.LogAttrs(ctx, slog.LevelInfo, "retry processor started",
		slog.Duration("interval", p.slowInterval),
		slog.Duration("fast_interval", p.fastInterval),
	)
}

// Stop halts the retry loops and waits for an in-flight tick to finish.
// No retry fires after Stop returns. Stopping a stopped processor is a no-op.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Processor) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.wg.Wait()
}

func (p *Processor) loop(ctx context.Context, interval time.Duration, fastPath bool) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, fastPath)
		}
	}
}

// tick processes every due item served by this loop, then persists the
// queue snapshot once to bound I/O. An empty queue is a no-op.
func (p *Processor) tick(ctx context.Context, fastPath bool) {
	now := time.Now()
	due := p.orch.queue.Due(now)

	processed := 0
	for _, item := range due {
		if item.Request.Kind.FastPath() != fastPath {
			continue
		}
		processed++
		p.process(ctx, item, now, fastPath)
	}

	if processed > 0 {
		if err := p.orch.queue.Flush(ctx); err != nil {
			p.logger.LogAttrs(ctx, slog.LevelError, "failed to persist retry queue", logger.Error(err))
		}
	}
}

func (p *Processor) process(ctx context.Context, item QueuedNotification, now time.Time, fastPath bool) {
	req := item.Request

	if req.IsExpired(now) {
		p.orch.markExpired(ctx, req)
		p.orch.queue.Remove(req.ID)
		p.logger.LogAttrs(ctx, slog.LevelInfo, "queued notification expired before retry",
			logger.NotificationID(req.ID),
			logger.Kind(string(req.Kind)),
		)
		return
	}

	if p.orch.deliver(ctx, req, true) {
		p.orch.queue.Remove(req.ID)
		p.logger.LogAttrs(ctx, slog.LevelInfo, "retry succeeded",
			logger.NotificationID(req.ID),
			logger.RetryCount(item.RetryCount+1),
		)
		return
	}

	retryCount := item.RetryCount + 1
	if retryCount >= item.MaxRetries {
		// Budget exhausted: the failed record written by the delivery
		// attempt is terminal, and the fallback record for high/critical
		// priorities is already persisted.
		p.orch.queue.Remove(req.ID)
		p.orch.events.Publish(Event{Type: EventExhausted, Request: req})
		p.logger.LogAttrs(ctx, slog.LevelWarn, "retry budget exhausted",
			logger.NotificationID(req.ID),
			logger.UserID(req.TargetUserID),
			logger.Kind(string(req.Kind)),
			logger.RetryCount(retryCount),
		)
		return
	}

	strategy := p.slowBackoff
	if fastPath {
		strategy = p.fastBackoff
	}
	next := now.Add(strategy.NextInterval(retryCount + 1))
	p.orch.queue.Reschedule(req.ID, retryCount, next)

	p.logger.LogAttrs(ctx, slog.LevelDebug, "retry rescheduled",
		logger.NotificationID(req.ID),
		logger.RetryCount(retryCount),
		slog.Time("next_retry_at", next),
	)
}
