package notify

import (
	"context"
	"time"
)

// DeviceAddress is a push-address snapshot owned by the device registry.
// The engine only reads it, one snapshot per delivery attempt.
type DeviceAddress struct {
	Address      string    `json:"address"`
	Platform     string    `json:"platform"` // "ios", "android", "web"
	DeviceID     string    `json:"device_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// DeviceRegistry maps a user to their registered device push-addresses.
// It is a collaborator of the engine, implemented by the host application.
type DeviceRegistry interface {
	// ListAddresses returns every registered address for the user.
	ListAddresses(ctx context.Context, userID string) ([]DeviceAddress, error)

	// PrimaryAddress returns the most recently registered address,
	// or nil when the user has no devices.
	PrimaryAddress(ctx context.Context, userID string) (*DeviceAddress, error)
}
