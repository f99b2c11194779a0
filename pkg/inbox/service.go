package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service is the application-facing inbox API.
type Service struct {
	storage Storage
}

// NewService creates an inbox service over the given storage.
func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Add stores an item, filling in the ID and creation time when absent.
func (s *Service) Add(ctx context.Context, item Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	if err := s.storage.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to store inbox item: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID, itemID string) (*Item, error) {
	return s.storage.Get(ctx, userID, itemID)
}

func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]Item, error) {
	return s.storage.List(ctx, userID, opts)
}

func (s *Service) MarkRead(ctx context.Context, userID string, itemIDs ...string) error {
	return s.storage.MarkRead(ctx, userID, itemIDs...)
}

// MarkAllRead marks every unread item of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	items, err := s.storage.List(ctx, userID, ListOptions{OnlyUnread: true})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return s.storage.MarkRead(ctx, userID, ids...)
}

func (s *Service) Delete(ctx context.Context, userID string, itemIDs ...string) error {
	return s.storage.Delete(ctx, userID, itemIDs...)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.storage.CountUnread(ctx, userID)
}
