package cityflow

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.URL != "" {
		t.Errorf("URL = %q, want empty", cfg.URL)
	}
	if cfg.ReconnectBaseDelay != time.Second {
		t.Errorf("ReconnectBaseDelay = %v", cfg.ReconnectBaseDelay)
	}
	if cfg.ReconnectMaxDelay != 30*time.Second {
		t.Errorf("ReconnectMaxDelay = %v", cfg.ReconnectMaxDelay)
	}
	if cfg.MaxReconnectAttempts != 10 {
		t.Errorf("MaxReconnectAttempts = %d", cfg.MaxReconnectAttempts)
	}
	if cfg.ReplayCapacity != 300 {
		t.Errorf("ReplayCapacity = %d", cfg.ReplayCapacity)
	}
	if cfg.EventLogLimit != 500 {
		t.Errorf("EventLogLimit = %d", cfg.EventLogLimit)
	}
}

func TestWithDefaultsFillsZeroFields(t *testing.T) {
	cfg := &Config{URL: "ws://localhost:8000/ws/city", HeartbeatInterval: 3 * time.Second}
	out := cfg.withDefaults()

	if out.URL != cfg.URL {
		t.Errorf("URL = %q", out.URL)
	}
	if out.HeartbeatInterval != 3*time.Second {
		t.Errorf("HeartbeatInterval = %v, want caller value kept", out.HeartbeatInterval)
	}
	if out.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want default", out.WriteTimeout)
	}
	if out.Logger == nil {
		t.Error("Logger not defaulted")
	}

	// The caller's struct is untouched.
	if cfg.WriteTimeout != 0 {
		t.Errorf("caller config mutated: WriteTimeout = %v", cfg.WriteTimeout)
	}
}

func TestWithDefaultsNil(t *testing.T) {
	var cfg *Config
	out := cfg.withDefaults()
	if out == nil || out.ReplayCapacity != 300 {
		t.Fatalf("withDefaults(nil) = %+v", out)
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "ws://localhost:8000/ws/city"
	clone := cfg.Clone()
	clone.URL = "ws://other:8000/ws/city"
	if cfg.URL != "ws://localhost:8000/ws/city" {
		t.Errorf("Clone aliases the original: URL = %q", cfg.URL)
	}
	if (*Config)(nil).Clone() != nil {
		t.Error("Clone(nil) != nil")
	}
}
