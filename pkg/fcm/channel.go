package fcm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/danceloop/notifykit/pkg/notify"
)

// Config holds the Firebase messaging settings.
type Config struct {
	CredentialsFile string        `env:"FCM_CREDENTIALS_FILE,required"`
	SendTimeout     time.Duration `env:"FCM_SEND_TIMEOUT" envDefault:"10s"`
}

// messageSender is the part of the Firebase messaging client the channel
// uses. Narrowed for testing.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Channel delivers notifications through FCM. Device addresses are FCM
// registration tokens.
type Channel struct {
	client      messageSender
	sendTimeout time.Duration
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithSendTimeout bounds each gateway call. Default is 10s.
func WithSendTimeout(d time.Duration) ChannelOption {
	return func(c *Channel) {
		if d > 0 {
			c.sendTimeout = d
		}
	}
}

// New initializes the Firebase app from the service-account credentials file
// and returns the messaging channel.
func New(ctx context.Context, cfg Config, opts ...ChannelOption) (*Channel, error) {
	if cfg.CredentialsFile == "" {
		return nil, ErrMissingCredentials
	}
	if _, err := os.Stat(cfg.CredentialsFile); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, cfg.CredentialsFile)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, errors.Join(ErrFailedToInitClient, err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToInitClient, err)
	}

	c := &Channel{client: client, sendTimeout: cfg.SendTimeout}
	if c.sendTimeout <= 0 {
		c.sendTimeout = 10 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewWithClient wraps an existing messaging client. Used in tests and when
// the host application already initialized the Firebase app.
func NewWithClient(client messageSender, opts ...ChannelOption) *Channel {
	c := &Channel{client: client, sendTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Channel) Name() string {
	return "fcm"
}

// Send pushes the notification to the device's registration token. Any
// gateway rejection, an unregistered token included, is returned as is.
func (c *Channel) Send(ctx context.Context, addr notify.DeviceAddress, req notify.Request) error {
	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	_, err := c.client.Send(sendCtx, buildMessage(addr, req))
	return err
}

// buildMessage maps a notification onto the FCM wire message. The engine's
// priority becomes the transport priority hint on both platforms.
func buildMessage(addr notify.DeviceAddress, req notify.Request) *messaging.Message {
	data := map[string]string{
		"notification_id": req.ID,
		"kind":            string(req.Kind),
		"priority":        req.Priority.String(),
	}
	for k, v := range req.Payload {
		data[k] = fmt.Sprint(v)
	}

	androidPriority := "normal"
	apnsPriority := "5"
	if req.Priority >= notify.PriorityHigh {
		androidPriority = "high"
		apnsPriority = "10"
	}

	return &messaging.Message{
		Token: addr.Address,
		Notification: &messaging.Notification{
			Title: req.Title,
			Body:  req.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: androidPriority,
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": apnsPriority,
			},
		},
	}
}
