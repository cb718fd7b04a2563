package subscriber

import "time"

// ConnectionState tracks where the subscriber is in its connection lifecycle.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateSubscribed   ConnectionState = "subscribed"

	// StateDegraded means the initial connection failed and the subscriber
	// gave up without entering the reconnect loop. Only an explicit restart
	// leaves this state.
	StateDegraded ConnectionState = "degraded"
)

// Status is a point-in-time snapshot of the subscriber's health, shaped for
// an operational status endpoint.
type Status struct {
	Enabled    bool            `json:"enabled"`
	Running    bool            `json:"running"`
	Connected  bool            `json:"connected"`
	Subscribed bool            `json:"subscribed"`
	State      ConnectionState `json:"state"`
	Channels   []string        `json:"channels"`
}

// SchemaStats counts messages per schema classification.
type SchemaStats struct {
	Enhanced uint64 `json:"enhanced"`
	Legacy   uint64 `json:"legacy"`
	Unknown  uint64 `json:"unknown"`
}

// Statistics are cumulative counters since Start.
type Statistics struct {
	MessagesReceived  uint64        `json:"messages_received"`
	MessagesProcessed uint64        `json:"messages_processed"`
	Errors            uint64        `json:"errors"`
	ReconnectCount    uint64        `json:"reconnect_count"`
	Uptime            time.Duration `json:"uptime"`
	Channels          []string      `json:"subscribed_channels"`
	Schema            SchemaStats   `json:"schema_version_stats"`
}
