package webhook

import (
	"context"
	"time"

	"github.com/danceloop/notifykit/pkg/notify"
)

// Envelope is the JSON body posted to a callback endpoint.
type Envelope struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Kind      string         `json:"kind"`
	Priority  string         `json:"priority"`
	Title     string         `json:"title"`
	Body      string         `json:"body,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Channel adapts a Sender to the delivery engine's channel interface for
// devices addressed by a callback URL.
type Channel struct {
	sender *Sender
}

// NewChannel wraps sender as a delivery channel.
func NewChannel(sender *Sender) *Channel {
	return &Channel{sender: sender}
}

func (c *Channel) Name() string {
	return "webhook"
}

// Send posts the notification to the device's callback URL. The error
// classification of the underlying Sender is preserved, so callers can
// inspect it with IsPermanent.
func (c *Channel) Send(ctx context.Context, addr notify.DeviceAddress, req notify.Request) error {
	return c.sender.Send(ctx, addr.Address, Envelope{
		ID:        req.ID,
		UserID:    req.TargetUserID,
		Kind:      string(req.Kind),
		Priority:  req.Priority.String(),
		Title:     req.Title,
		Body:      req.Body,
		Payload:   req.Payload,
		CreatedAt: req.CreatedAt,
	})
}
