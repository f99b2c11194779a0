package inbox

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation for development and
// tests.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string][]Item // userID -> items
}

// NewMemoryStorage creates an empty in-memory inbox storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string][]Item)}
}

func (s *MemoryStorage) Create(ctx context.Context, item Item) error {
	if item.ID == "" {
		return ErrMissingItemID
	}
	if item.UserID == "" {
		return ErrMissingUserID
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[item.UserID]
	for i := range items {
		if items[i].ID == item.ID {
			// Re-storing a known ID refreshes content without duplicating
			// the item, reordering the list, or resurrecting read state.
			item.CreatedAt = items[i].CreatedAt
			item.Read = items[i].Read
			item.ReadAt = items[i].ReadAt
			items[i] = item
			return nil
		}
	}

	s.items[item.UserID] = append(items, item)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID, itemID string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items[userID] {
		if item.ID == itemID {
			// Copy so callers cannot mutate stored data.
			found := item
			return &found, nil
		}
	}
	return nil, ErrItemNotFound
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Item
	for _, item := range s.items[userID] {
		if item.IsExpired() {
			continue
		}
		if opts.OnlyUnread && item.Read {
			continue
		}
		if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, item.Kind) {
			continue
		}
		if opts.Since != nil && item.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, item)
	}

	slices.SortFunc(filtered, func(a, b Item) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Item{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, itemIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[userID]
	for i := range items {
		if slices.Contains(itemIDs, items[i].ID) {
			items[i].MarkAsRead()
		}
	}
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, userID string, itemIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[userID] = slices.DeleteFunc(s.items[userID], func(item Item) bool {
		return slices.Contains(itemIDs, item.ID)
	})
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items[userID] {
		if !item.Read && !item.IsExpired() {
			count++
		}
	}
	return count, nil
}
