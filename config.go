package cityflow

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cityflow-dev/cityflow/pkg/replay"
	"github.com/cityflow-dev/cityflow/pkg/state"
)

// Config holds the settings for one Client instance.
// Zero values fall back to the defaults documented per field.
type Config struct {
	// URL is the feed endpoint. Required.
	URL string

	// Reconnection

	// ReconnectBaseDelay is the delay before the first reconnect attempt;
	// later attempts double it. Default: 1 second.
	ReconnectBaseDelay time.Duration

	// ReconnectMaxDelay caps the backoff. Default: 30 seconds.
	ReconnectMaxDelay time.Duration

	// MaxReconnectAttempts bounds automatic reconnection before the client
	// enters a terminal error state. Default: 10.
	MaxReconnectAttempts int

	// Timers

	// HeartbeatInterval is the fixed ping cadence while connected.
	// Default: 10 seconds.
	HeartbeatInterval time.Duration

	// HandshakeTimeout bounds the websocket dial. Default: 10 seconds.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each outbound write. Default: 10 seconds.
	WriteTimeout time.Duration

	// History

	// ReplayCapacity is the number of snapshots kept for scrubbing.
	// Default: replay.DefaultCapacity (300).
	ReplayCapacity int

	// ReplayTickInterval is the playback cursor cadence.
	// Default: replay.DefaultTickInterval (1 second).
	ReplayTickInterval time.Duration

	// EventLogLimit caps the retained event-log tail.
	// Default: state.DefaultEventLogLimit (500).
	EventLogLimit int

	// Observability

	// Logger receives client diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// MetricsRegisterer receives the client's Prometheus instruments.
	// Nil disables metrics.
	MetricsRegisterer prometheus.Registerer
}

// DefaultConfig returns a Config with every default filled in. The URL is
// left empty and must be supplied by the caller.
func DefaultConfig() *Config {
	return &Config{
		ReconnectBaseDelay:   time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: 10,
		HeartbeatInterval:    10 * time.Second,
		HandshakeTimeout:     10 * time.Second,
		WriteTimeout:         10 * time.Second,
		ReplayCapacity:       replay.DefaultCapacity,
		ReplayTickInterval:   replay.DefaultTickInterval,
		EventLogLimit:        state.DefaultEventLogLimit,
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := c.Clone()
	if out.ReconnectBaseDelay <= 0 {
		out.ReconnectBaseDelay = defaults.ReconnectBaseDelay
	}
	if out.ReconnectMaxDelay <= 0 {
		out.ReconnectMaxDelay = defaults.ReconnectMaxDelay
	}
	if out.MaxReconnectAttempts <= 0 {
		out.MaxReconnectAttempts = defaults.MaxReconnectAttempts
	}
	if out.HeartbeatInterval <= 0 {
		out.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.ReplayCapacity <= 0 {
		out.ReplayCapacity = defaults.ReplayCapacity
	}
	if out.ReplayTickInterval <= 0 {
		out.ReplayTickInterval = defaults.ReplayTickInterval
	}
	if out.EventLogLimit <= 0 {
		out.EventLogLimit = defaults.EventLogLimit
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}
