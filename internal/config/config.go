// Package config loads CLI configuration from an optional cityflow.json
// file with environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/cityflow-dev/cityflow"
)

// FileName is the project-local config file the CLI looks for.
const FileName = "cityflow.json"

// EnvPrefix is prepended to environment overrides, e.g. CITYFLOW_URL.
const EnvPrefix = "cityflow"

// Config holds the settings the CLI needs to build a client and its
// operational endpoint. File values are optional; environment variables
// (CITYFLOW_URL, CITYFLOW_OPS_ADDR, ...) take precedence over the file.
type Config struct {
	// URL is the websocket feed endpoint, e.g. ws://localhost:8000/ws/city.
	URL string `json:"url" envconfig:"URL"`

	// OpsAddr is the listen address for the operational HTTP server.
	// Empty disables it.
	OpsAddr string `json:"ops_addr" envconfig:"OPS_ADDR"`

	// MaxReconnectAttempts bounds retries per connection loss.
	// Zero means use the client default.
	MaxReconnectAttempts int `json:"max_reconnect_attempts" envconfig:"MAX_RECONNECT_ATTEMPTS"`

	// ReplayCapacity is the number of snapshots retained for playback.
	ReplayCapacity int `json:"replay_capacity" envconfig:"REPLAY_CAPACITY"`

	// EventLogLimit caps the retained city event log.
	EventLogLimit int `json:"event_log_limit" envconfig:"EVENT_LOG_LIMIT"`

	// Durations are environment-only ("10s", "500ms").
	HeartbeatInterval  time.Duration `json:"-" envconfig:"HEARTBEAT_INTERVAL"`
	ReconnectBaseDelay time.Duration `json:"-" envconfig:"RECONNECT_BASE_DELAY"`
	ReconnectMaxDelay  time.Duration `json:"-" envconfig:"RECONNECT_MAX_DELAY"`
}

// Load reads FileName from dir if it exists, then applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// File is optional; environment alone can configure the CLI.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// ClientConfig translates the CLI settings into a client configuration.
// Zero fields fall back to the client defaults.
func (c *Config) ClientConfig() *cityflow.Config {
	out := cityflow.DefaultConfig()
	out.URL = c.URL
	if c.MaxReconnectAttempts > 0 {
		out.MaxReconnectAttempts = c.MaxReconnectAttempts
	}
	if c.ReplayCapacity > 0 {
		out.ReplayCapacity = c.ReplayCapacity
	}
	if c.EventLogLimit > 0 {
		out.EventLogLimit = c.EventLogLimit
	}
	if c.HeartbeatInterval > 0 {
		out.HeartbeatInterval = c.HeartbeatInterval
	}
	if c.ReconnectBaseDelay > 0 {
		out.ReconnectBaseDelay = c.ReconnectBaseDelay
	}
	if c.ReconnectMaxDelay > 0 {
		out.ReconnectMaxDelay = c.ReconnectMaxDelay
	}
	return out
}
