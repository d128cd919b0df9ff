package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"RETRO_API_URL", "RETRO_PUSH_TRANSPORT", "RETRO_HTTP_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := NewConfigFromEnv()
	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.PushTransport != TransportSSE {
		t.Errorf("PushTransport = %q", cfg.PushTransport)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
}

func TestNewConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("RETRO_API_URL", "https://retro.example.com")
	t.Setenv("RETRO_PUSH_TRANSPORT", "nats")
	t.Setenv("RETRO_HTTP_TIMEOUT", "5")
	t.Setenv("RETRO_RECONNECT_WAIT", "not-a-number")

	cfg := NewConfigFromEnv()
	if cfg.APIURL != "https://retro.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.PushTransport != TransportNATS {
		t.Errorf("PushTransport = %q", cfg.PushTransport)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.ReconnectWait != 3*time.Second {
		t.Errorf("ReconnectWait = %v, want default on bad input", cfg.ReconnectWait)
	}
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retro.yaml")
	content := `api_url: http://file:8000
push_transport: websocket
state_file: /tmp/state.yaml
reconnect_wait_seconds: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RETRO_API_URL", "http://env:8000")
	t.Setenv("RETRO_PUSH_TRANSPORT", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIURL != "http://env:8000" {
		t.Errorf("APIURL = %q, want env to win", cfg.APIURL)
	}
	if cfg.PushTransport != TransportWebSocket {
		t.Errorf("PushTransport = %q, want file value", cfg.PushTransport)
	}
	if cfg.StateFile != "/tmp/state.yaml" {
		t.Errorf("StateFile = %q", cfg.StateFile)
	}
	if cfg.ReconnectWait != 7*time.Second {
		t.Errorf("ReconnectWait = %v", cfg.ReconnectWait)
	}
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	t.Setenv("RETRO_PUSH_TRANSPORT", "carrier-pigeon")

	if _, err := Load(""); !errors.Is(err, ErrUnknownTransport) {
		t.Errorf("Load() error = %v, want ErrUnknownTransport", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() error = nil for missing file")
	}
}

func TestPushBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retro.yaml")
	content := `push_url: http://relay:8090
relay_listen: ":8090"
admin_token: file-token
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RETRO_ADMIN_TOKEN", "env-token")
	t.Setenv("RETRO_PUSH_URL", "")
	t.Setenv("RETRO_RELAY_LISTEN", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.PushBaseURL(); got != "http://relay:8090" {
		t.Errorf("PushBaseURL() = %q", got)
	}
	if cfg.RelayListen != ":8090" {
		t.Errorf("RelayListen = %q", cfg.RelayListen)
	}
	if cfg.AdminToken != "env-token" {
		t.Errorf("AdminToken = %q, want env to win", cfg.AdminToken)
	}

	if got := Defaults().PushBaseURL(); got != Defaults().APIURL {
		t.Errorf("default PushBaseURL() = %q, want APIURL", got)
	}
}
