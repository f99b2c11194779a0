package inbox

import (
	"context"

	"github.com/danceloop/notifykit/pkg/notify"
)

// Channel exposes the inbox as a delivery channel. The delivery engine uses
// it as the fallback surface when push delivery is impossible: a send
// succeeds once the item is durably stored, regardless of whether the user
// is currently online.
type Channel struct {
	service *Service
}

// NewChannel wraps service as a delivery channel.
func NewChannel(service *Service) *Channel {
	return &Channel{service: service}
}

func (c *Channel) Name() string {
	return "inbox"
}

// Send stores the notification in the user's in-app list. The device
// address is ignored; the inbox is not device-bound.
func (c *Channel) Send(ctx context.Context, _ notify.DeviceAddress, req notify.Request) error {
	return c.service.Add(ctx, Item{
		ID:        req.ID,
		UserID:    req.TargetUserID,
		Kind:      req.Kind,
		Title:     req.Title,
		Body:      req.Body,
		Payload:   req.Payload,
		CreatedAt: req.CreatedAt,
		ExpiresAt: req.ExpiresAt,
	})
}
