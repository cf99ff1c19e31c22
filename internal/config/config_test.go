package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL != "" {
		t.Errorf("URL = %q, want empty", cfg.URL)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	data := `{"url":"ws://localhost:8000/ws/city","ops_addr":":8090","replay_capacity":50}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL != "ws://localhost:8000/ws/city" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.OpsAddr != ":8090" {
		t.Errorf("OpsAddr = %q", cfg.OpsAddr)
	}
	if cfg.ReplayCapacity != 50 {
		t.Errorf("ReplayCapacity = %d", cfg.ReplayCapacity)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("Load accepted malformed JSON")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	data := `{"url":"ws://file.example/ws/city"}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CITYFLOW_URL", "ws://env.example/ws/city")
	t.Setenv("CITYFLOW_HEARTBEAT_INTERVAL", "5s")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.URL != "ws://env.example/ws/city" {
		t.Errorf("URL = %q, want env value", cfg.URL)
	}
	if cfg.HeartbeatInterval != 5*time.Second {
		t.Errorf("HeartbeatInterval = %v", cfg.HeartbeatInterval)
	}
}

func TestClientConfigDefaults(t *testing.T) {
	cfg := &Config{URL: "ws://localhost:8000/ws/city", ReplayCapacity: 25}
	cc := cfg.ClientConfig()
	if cc.URL != cfg.URL {
		t.Errorf("URL = %q", cc.URL)
	}
	if cc.ReplayCapacity != 25 {
		t.Errorf("ReplayCapacity = %d", cc.ReplayCapacity)
	}
	if cc.MaxReconnectAttempts != 10 {
		t.Errorf("MaxReconnectAttempts = %d, want default 10", cc.MaxReconnectAttempts)
	}
	if cc.HeartbeatInterval != 10*time.Second {
		t.Errorf("HeartbeatInterval = %v, want default", cc.HeartbeatInterval)
	}
}
