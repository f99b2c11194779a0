package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danceloop/notifykit/pkg/kv"
	"github.com/danceloop/notifykit/pkg/logger"
)

// Status is the lifecycle state of a notification's delivery.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"      // accepted by the channel for a single address
	StatusDelivered Status = "delivered" // broadcast success or retry success
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired" // scheduled delivery time passed before any attempt
)

// Success reports whether the status is a terminal success state.
// Success states are never regressed: a later pending or failed write for
// the same ID is discarded.
func (s Status) Success() bool {
	return s == StatusSent || s == StatusDelivered
}

// AttemptRecord is the single live status entry for a notification ID.
// Superseded records are overwritten, not appended.
type AttemptRecord struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"` // present only for failed/expired
}

// Stats aggregates terminal delivery outcomes across all records.
type Stats struct {
	TotalSent      int `json:"total_sent"`
	TotalDelivered int `json:"total_delivered"`
	TotalFailed    int `json:"total_failed"`
}

const statusKeyPrefix = "status:"

// StatusStore keeps one durable AttemptRecord per notification ID.
type StatusStore struct {
	store  kv.Store
	logger *slog.Logger
}

// NewStatusStore creates a status store on top of the given kv store.
func NewStatusStore(store kv.Store, log *slog.Logger) *StatusStore {
	if log == nil {
		log = slog.Default()
	}
	return &StatusStore{store: store, logger: log}
}

// Save upserts the record for id. Writes that would regress a terminal
// success or expired record are silently discarded, so a repeated Deliver
// for an already-delivered ID cannot resurrect its lifecycle.
func (s *StatusStore) Save(ctx context.Context, id string, status Status, errText string) error {
	if existing, err := s.Get(ctx, id); err == nil {
		if existing.Status.Success() || existing.Status == StatusExpired {
			return nil
		}
	}

	rec := AttemptRecord{
		ID:        id,
		Status:    status,
		Timestamp: time.Now(),
	}
	if status == StatusFailed || status == StatusExpired {
		rec.Error = errText
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode delivery record: %w", err)
	}

	if err := s.store.Set(ctx, statusKeyPrefix+id, data); err != nil {
		return fmt.Errorf("failed to persist delivery record: %w", err)
	}
	return nil
}

// Get retrieves the live record for id, or ErrRecordNotFound.
func (s *StatusStore) Get(ctx context.Context, id string) (*AttemptRecord, error) {
	data, err := s.store.Get(ctx, statusKeyPrefix+id)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read delivery record: %w", err)
	}

	var rec AttemptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode delivery record: %w", err)
	}
	return &rec, nil
}

// Stats scans all records and aggregates terminal outcomes.
// The scan is eventually consistent with in-flight writes.
func (s *StatusStore) Stats(ctx context.Context) (Stats, error) {
	keys, err := s.store.ListKeys(ctx, statusKeyPrefix)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list delivery records: %w", err)
	}

	var stats Stats
	for _, key := range keys {
		data, err := s.store.Get(ctx, key)
		if err != nil {
			// Records can disappear between list and read.
			continue
		}

		var rec AttemptRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping unreadable delivery record",
				slog.String("key", key),
				logger.Error(err),
			)
			continue
		}

		switch rec.Status {
		case StatusSent:
			stats.TotalSent++
		case StatusDelivered:
			stats.TotalDelivered++
		case StatusFailed:
			stats.TotalFailed++
		}
	}
	return stats, nil
}
