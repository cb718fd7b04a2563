package subscriber

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDisabled is returned by Start when the configuration turns the
	// subscriber off. Callers treat it as a choice, not a failure.
	ErrDisabled = errors.New("subscriber: disabled by configuration")

	// ErrAlreadyRunning is returned by Start on a subscriber that is
	// already consuming.
	ErrAlreadyRunning = errors.New("subscriber: already running")
)

// Subscriber is a long-lived consumer of fixture-update messages.
type Subscriber interface {
	Start(ctx context.Context) error

	Stop() error

	IsRunning() bool

	Status() Status
	Statistics() Statistics
}

type Config struct {
	// Enabled gates the whole subscription; a disabled subscriber refuses
	// to start and the service runs on manual triggers only.
	Enabled bool `json:"enabled"`

	// URL is the broker address, redis:// or rediss://
	URL string `json:"url"`

	// Channels to subscribe to; at least one is required
	Channels []string `json:"channels"`

	// ConnectTimeout bounds dialing and the readiness ping. Reads are
	// never bounded: an idle channel is normal, not a timeout.
	ConnectTimeout time.Duration `json:"connect_timeout"`

	// ReconnectDelay is the backoff floor after a lost connection
	ReconnectDelay time.Duration `json:"reconnect_delay"`

	// ReconnectMaxDelay caps the exponential backoff
	ReconnectMaxDelay time.Duration `json:"reconnect_max_delay"`
}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (l *noopLogger) Debugf(format string, args ...any) {}
func (l *noopLogger) Infof(format string, args ...any)  {}
func (l *noopLogger) Warnf(format string, args ...any)  {}
func (l *noopLogger) Errorf(format string, args ...any) {}
