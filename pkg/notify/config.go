package notify

import "time"

// Config holds the engine's tunables. Fields are populated from environment
// variables via pkg/config.
type Config struct {
	// SendTimeout bounds every ChannelSender call.
	SendTimeout time.Duration `env:"NOTIFY_SEND_TIMEOUT" envDefault:"10s"`

	// RetryInterval is the slow retry-processor loop period.
	RetryInterval time.Duration `env:"NOTIFY_RETRY_INTERVAL" envDefault:"30s"`

	// FastRetryInterval is the secondary loop period serving time-critical kinds.
	FastRetryInterval time.Duration `env:"NOTIFY_FAST_RETRY_INTERVAL" envDefault:"5s"`

	// RetryBackoffBase is the exponential backoff base for the slow loop.
	RetryBackoffBase time.Duration `env:"NOTIFY_RETRY_BACKOFF_BASE" envDefault:"60s"`

	// FastRetryBackoffBase is the exponential backoff base for the fast loop.
	FastRetryBackoffBase time.Duration `env:"NOTIFY_FAST_RETRY_BACKOFF_BASE" envDefault:"1s"`

	// MaxInFlightSends caps concurrent sends during broadcast fan-out.
	MaxInFlightSends int `env:"NOTIFY_MAX_IN_FLIGHT_SENDS" envDefault:"16"`

	// EventBufferSize is the per-subscriber delivery-event buffer.
	EventBufferSize int `env:"NOTIFY_EVENT_BUFFER_SIZE" envDefault:"64"`
}
