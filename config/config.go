package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

type Config struct {
	AppName  string `json:"app_name" toml:"app_name"`
	LogLevel string `json:"log_level" toml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	Subscriber SubscriberConfig `json:"subscriber" toml:"subscriber"`
	Calendar   CalendarConfig   `json:"calendar" toml:"calendar"`
	Contacts   ContactsConfig   `json:"contacts" toml:"contacts"`
	Processor  ProcessorConfig  `json:"processor" toml:"processor"`
	Sink       SinkConfig       `json:"sink" toml:"sink"`
	Store      StoreConfig      `json:"store" toml:"store"`
	Metrics    MetricsConfig    `json:"metrics" toml:"metrics"`
}

// SubscriberConfig is the feed subscription section. Durations are plain
// seconds so they read naturally in TOML.
type SubscriberConfig struct {
	Enabled               bool     `json:"enabled" toml:"enabled"`
	URL                   string   `json:"url" toml:"url" validate:"required_if=Enabled true,omitempty,uri"`
	Channels              []string `json:"channels" toml:"channels" validate:"required_if=Enabled true"`
	ConnectTimeoutSecs    int      `json:"connect_timeout_secs" toml:"connect_timeout_secs" validate:"gte=0"`
	ReconnectDelaySecs    int      `json:"reconnect_delay_secs" toml:"reconnect_delay_secs" validate:"gte=0"`
	ReconnectMaxDelaySecs int      `json:"reconnect_max_delay_secs" toml:"reconnect_max_delay_secs" validate:"gte=0"`
}

type CalendarConfig struct {
	// Provider picks the destination backend.
	Provider string `json:"provider" toml:"provider" validate:"omitempty,oneof=memory"`

	// SyncTag marks the events this instance owns. Two instances sharing a
	// calendar must use different tags.
	SyncTag string `json:"sync_tag" toml:"sync_tag"`

	RetentionDays        int `json:"retention_days" toml:"retention_days" validate:"gte=0"`
	EventDurationMinutes int `json:"event_duration_minutes" toml:"event_duration_minutes" validate:"gte=0"`
	ReminderMinutes      int `json:"reminder_minutes" toml:"reminder_minutes" validate:"gte=0"`

	// DetailsURL is a printf template with one %s verb for the fixture id.
	DetailsURL string `json:"details_url" toml:"details_url"`

	PacingMillis  int `json:"pacing_ms" toml:"pacing_ms" validate:"gte=0"`
	RetryAttempts int `json:"retry_attempts" toml:"retry_attempts" validate:"gte=0"`
	RetryBaseSecs int `json:"retry_base_secs" toml:"retry_base_secs" validate:"gte=0"`
}

type ContactsConfig struct {
	Enabled bool `json:"enabled" toml:"enabled"`
}

type ProcessorConfig struct {
	// DropCancelled removes cancelled fixtures before the sync so the
	// orphan sweep clears their events.
	DropCancelled bool `json:"drop_cancelled" toml:"drop_cancelled"`
	Dedupe        bool `json:"dedupe" toml:"dedupe"`
	Debug         bool `json:"debug" toml:"debug"`
}

type SinkConfig struct {
	Types       []string `json:"types" toml:"types" validate:"dive,oneof=console stdout debug"`
	PrettyPrint bool     `json:"pretty_print" toml:"pretty_print"`
	Color       bool     `json:"color" toml:"color"`
}

type StoreConfig struct {
	// Path of the hash cache used by the one-shot command. Empty disables
	// the cache.
	Path string `json:"path" toml:"path"`
}

type MetricsConfig struct {
	// Enabled serves Prometheus metrics and the health endpoint.
	Enabled bool   `json:"enabled" toml:"enabled"`
	Addr    string `json:"addr" toml:"addr" validate:"omitempty,hostname_port"`
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig

	switch {
	case strings.HasSuffix(path, ".json"):
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case strings.HasSuffix(path, ".toml"):
		if _, err := toml.Decode(string(data), &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", path)
	}

	applyEnv(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyEnv lets the environment override file settings, matching how the
// service is deployed in containers.
func applyEnv(c *Config) {
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Subscriber.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SYNC_TAG"); v != "" {
		c.Calendar.SyncTag = v
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var DefaultConfig = Config{
	AppName:  "fixture-sentinel",
	LogLevel: "info",
	Subscriber: SubscriberConfig{
		Enabled:               true,
		URL:                   "redis://localhost:6379/0",
		Channels:              []string{"fixture_updates"},
		ConnectTimeoutSecs:    5,
		ReconnectDelaySecs:    1,
		ReconnectMaxDelaySecs: 60,
	},
	Calendar: CalendarConfig{
		Provider:             "memory",
		SyncTag:              "fixture-sentinel",
		RetentionDays:        7,
		EventDurationMinutes: 120,
		ReminderMinutes:      2880,
		PacingMillis:         1000,
		RetryAttempts:        5,
		RetryBaseSecs:        60,
	},
	Contacts: ContactsConfig{
		Enabled: true,
	},
	Processor: ProcessorConfig{
		DropCancelled: true,
		Dedupe:        true,
	},
	Sink: SinkConfig{
		Types:       []string{"console"},
		PrettyPrint: true,
		Color:       true,
	},
	Store: StoreConfig{
		Path: ".fixture-sentinel/state.json",
	},
	Metrics: MetricsConfig{
		Enabled: true,
		Addr:    "localhost:2112",
	},
}
