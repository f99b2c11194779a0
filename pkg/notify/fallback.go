package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/danceloop/notifykit/pkg/kv"
	"github.com/danceloop/notifykit/pkg/logger"
)

const fallbackKeyPrefix = "fallback:"

// FallbackStore is the terminal safety net: a durable, per-user, per-
// notification snapshot of high/critical notifications that failed every
// channel. Records are surfaced in full, then deleted, the next time the
// user's client drains them.
type FallbackStore struct {
	store  kv.Store
	logger *slog.Logger
}

// NewFallbackStore creates a fallback store on top of the given kv store.
func NewFallbackStore(store kv.Store, log *slog.Logger) *FallbackStore {
	if log == nil {
		log = slog.Default()
	}
	return &FallbackStore{store: store, logger: log}
}

func fallbackKey(userID, notifID string) string {
	return fallbackKeyPrefix + userID + ":" + notifID
}

// Persist stores the notification for later drain. Re-persisting the same
// notification overwrites the previous snapshot.
func (f *FallbackStore) Persist(ctx context.Context, req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode fallback record: %w", err)
	}

	if err := f.store.Set(ctx, fallbackKey(req.TargetUserID, req.ID), data); err != nil {
		return fmt.Errorf("failed to persist fallback record: %w", err)
	}
	return nil
}

// Drain returns every pending fallback notification for the user, oldest
// first, and deletes them. A record that cannot be decoded is dropped with a
// log line rather than wedging the drain forever.
func (f *FallbackStore) Drain(ctx context.Context, userID string) ([]Request, error) {
	keys, err := f.store.ListKeys(ctx, fallbackKeyPrefix+userID+":")
	if err != nil {
		return nil, fmt.Errorf("failed to list fallback records: %w", err)
	}

	requests := make([]Request, 0, len(keys))
	for _, key := range keys {
		data, err := f.store.Get(ctx, key)
		if err != nil {
			continue
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			f.logger.LogAttrs(ctx, slog.LevelWarn, "dropping unreadable fallback record",
				slog.String("key", key),
				logger.Error(err),
			)
			_ = f.store.Remove(ctx, key)
			continue
		}

		requests = append(requests, req)
		if err := f.store.Remove(ctx, key); err != nil {
			f.logger.LogAttrs(ctx, slog.LevelError, "failed to remove drained fallback record",
				slog.String("key", key),
				logger.Error(err),
			)
		}
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests, nil
}
