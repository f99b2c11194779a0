package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danceloop/notifykit/pkg/kv"
	"github.com/danceloop/notifykit/pkg/logger"
)

// QueuedNotification is a request awaiting a scheduled retry.
type QueuedNotification struct {
	Request     Request   `json:"request"`
	RetryCount  int       `json:"retry_count"`
	MaxRetries  int       `json:"max_retries"` // fixed at enqueue time from the kind
	NextRetryAt time.Time `json:"next_retry_at"`
}

const retryQueueKey = "retry_queue"

// RetryQueue is a durable, unordered collection of notifications awaiting a
// future retry. The in-memory map is authoritative; a JSON snapshot is
// written to the kv store so a restart loses no in-flight retries. A
// snapshot-write failure is logged and retried on the next successful
// persist, it never fails the caller's delivery flow.
type RetryQueue struct {
	store  kv.Store
	logger *slog.Logger

	mu    sync.Mutex
	items map[string]QueuedNotification
	dirty bool
}

// NewRetryQueue creates a queue backed by store and loads any snapshot
// persisted by a previous run.
func NewRetryQueue(store kv.Store, log *slog.Logger) *RetryQueue {
	if log == nil {
		log = slog.Default()
	}

	q := &RetryQueue{
		store:  store,
		logger: log,
		items:  make(map[string]QueuedNotification),
	}
	q.load()
	return q
}

func (q *RetryQueue) load() {
	ctx := context.Background()

	data, err := q.store.Get(ctx, retryQueueKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return
	}
	if err != nil {
		q.logger.LogAttrs(ctx, slog.LevelError, "failed to load retry queue snapshot", logger.Error(err))
		return
	}

	var items []QueuedNotification
	if err := json.Unmarshal(data, &items); err != nil {
		q.logger.LogAttrs(ctx, slog.LevelError, "failed to decode retry queue snapshot", logger.Error(err))
		return
	}

	for _, item := range items {
		q.items[item.Request.ID] = item
	}
}

// Enqueue adds a notification for a future retry and persists the snapshot.
// A notification already in the queue is left untouched: the orchestrator is
// the single enqueue point, so a duplicate means a concurrent Deliver for
// the same ID and must not reset the retry bookkeeping.
func (q *RetryQueue) Enqueue(ctx context.Context, item QueuedNotification) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.items[item.Request.ID]; exists {
		return nil
	}

	q.items[item.Request.ID] = item
	q.dirty = true
	return q.persistLocked(ctx)
}

// Due returns all items eligible for resubmission at now: the scheduled time
// has arrived and the retry budget is not exhausted.
func (q *RetryQueue) Due(now time.Time) []QueuedNotification {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []QueuedNotification
	for _, item := range q.items {
		if !item.NextRetryAt.After(now) && item.RetryCount < item.MaxRetries {
			due = append(due, item)
		}
	}
	return due
}

// Reschedule records a failed retry: the retry counter is set to retryCount
// and the next attempt scheduled for nextRetryAt. The snapshot is not
// written; the processor persists once per tick via Flush.
func (q *RetryQueue) Reschedule(id string, retryCount int, nextRetryAt time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, exists := q.items[id]
	if !exists {
		return
	}

	item.RetryCount = retryCount
	item.NextRetryAt = nextRetryAt
	q.items[id] = item
	q.dirty = true
}

// Remove drops the notification from the queue. Like Reschedule, persistence
// is deferred to Flush.
func (q *RetryQueue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.items[id]; !exists {
		return
	}
	delete(q.items, id)
	q.dirty = true
}

// Flush persists the current snapshot if anything changed since the last
// successful persist.
func (q *RetryQueue) Flush(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.persistLocked(ctx)
}

// Size returns the number of queued notifications.
func (q *RetryQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Get returns the queued entry for id, if any.
func (q *RetryQueue) Get(id string) (QueuedNotification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[id]
	return item, ok
}

func (q *RetryQueue) persistLocked(ctx context.Context) error {
	if !q.dirty {
		return nil
	}

	items := make([]QueuedNotification, 0, len(q.items))
	for _, item := range q.items {
		items = append(items, item)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode retry queue: %w", err)
	}

	if err := q.store.Set(ctx, retryQueueKey, data); err != nil {
		// The in-memory queue stays authoritative until the next
		// successful persist.
		q.logger.LogAttrs(ctx, slog.LevelError, "failed to persist retry queue snapshot",
			slog.Int("queue_size", len(items)),
			logger.Error(err),
		)
		return fmt.Errorf("failed to persist retry queue: %w", err)
	}

	q.dirty = false
	return nil
}
