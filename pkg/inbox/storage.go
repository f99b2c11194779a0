package inbox

import (
	"context"
	"time"

	"github.com/danceloop/notifykit/pkg/notify"
)

// Storage handles inbox persistence and retrieval.
type Storage interface {
	// Create stores an item. Storing an ID the user already has replaces
	// that item instead of adding a duplicate.
	Create(ctx context.Context, item Item) error

	// Get retrieves a single item.
	Get(ctx context.Context, userID, itemID string) (*Item, error)

	// List returns a user's items, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Item, error)

	// MarkRead marks item(s) as read.
	MarkRead(ctx context.Context, userID string, itemIDs ...string) error

	// Delete removes item(s).
	Delete(ctx context.Context, userID string, itemIDs ...string) error

	// CountUnread returns the user's unread count.
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions filters and paginates inbox listings.
type ListOptions struct {
	Limit      int           // maximum items to return (0 = no limit)
	Offset     int           // items to skip for pagination
	OnlyUnread bool          // only unread items
	Kinds      []notify.Kind // only these kinds, when non-empty
	Since      *time.Time    // only items created after this time
}
