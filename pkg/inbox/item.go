package inbox

import (
	"time"

	"github.com/danceloop/notifykit/pkg/notify"
)

// Item is one entry in a user's in-app notification list.
type Item struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Kind      notify.Kind    `json:"kind"`
	Title     string         `json:"title"`
	Body      string         `json:"body,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Read      bool           `json:"read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// IsExpired reports whether the item has passed its expiry.
func (i *Item) IsExpired() bool {
	if i.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*i.ExpiresAt)
}

// MarkAsRead marks the item read at the current time.
func (i *Item) MarkAsRead() {
	i.Read = true
	now := time.Now()
	i.ReadAt = &now
}
