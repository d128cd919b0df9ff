package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Push transports understood by the client.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
	TransportNATS      = "nats"
)

var ErrUnknownTransport = errors.New("unknown push transport")

// Config holds client settings.
type Config struct {
	APIURL        string        `yaml:"api_url"`
	PushTransport string        `yaml:"push_transport"`
	PushURL       string        `yaml:"push_url"`
	NATSURL       string        `yaml:"nats_url"`
	NATSStream    string        `yaml:"nats_stream"`
	RelayListen   string        `yaml:"relay_listen"`
	AdminToken    string        `yaml:"admin_token"`
	StateFile     string        `yaml:"state_file"`
	LogLevel      string        `yaml:"log_level"`
	HTTPTimeout   time.Duration `yaml:"-"`
	ReconnectWait time.Duration `yaml:"-"`

	// Durations are whole seconds in YAML and the environment
	HTTPTimeoutSeconds   int `yaml:"http_timeout_seconds"`
	ReconnectWaitSeconds int `yaml:"reconnect_wait_seconds"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		APIURL:        "http://localhost:8000",
		PushTransport: TransportSSE,
		NATSURL:       "nats://localhost:4222",
		StateFile:     defaultStateFile(),
		LogLevel:      "info",
		HTTPTimeout:   30 * time.Second,
		ReconnectWait: 3 * time.Second,
	}
}

// NewConfigFromEnv reads RETRO_* environment variables (with defaults).
func NewConfigFromEnv() Config {
	c := Defaults()
	c.applyEnv()
	return c
}

// Load layers defaults, the optional YAML file at path and the environment, in
// that order. An empty path skips the file.
func Load(path string) (Config, error) {
	c := Defaults()
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile overlays the non-empty values of a YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	overlay(&c.APIURL, file.APIURL)
	overlay(&c.PushTransport, file.PushTransport)
	overlay(&c.PushURL, file.PushURL)
	overlay(&c.NATSURL, file.NATSURL)
	overlay(&c.NATSStream, file.NATSStream)
	overlay(&c.RelayListen, file.RelayListen)
	overlay(&c.AdminToken, file.AdminToken)
	overlay(&c.StateFile, file.StateFile)
	overlay(&c.LogLevel, file.LogLevel)
	if file.HTTPTimeoutSeconds > 0 {
		c.HTTPTimeout = time.Duration(file.HTTPTimeoutSeconds) * time.Second
	}
	if file.ReconnectWaitSeconds > 0 {
		c.ReconnectWait = time.Duration(file.ReconnectWaitSeconds) * time.Second
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIURL = getEnv("RETRO_API_URL", c.APIURL)
	c.PushTransport = getEnv("RETRO_PUSH_TRANSPORT", c.PushTransport)
	c.PushURL = getEnv("RETRO_PUSH_URL", c.PushURL)
	c.NATSURL = getEnv("RETRO_NATS_URL", c.NATSURL)
	c.NATSStream = getEnv("RETRO_NATS_STREAM", c.NATSStream)
	c.RelayListen = getEnv("RETRO_RELAY_LISTEN", c.RelayListen)
	c.AdminToken = getEnv("RETRO_ADMIN_TOKEN", c.AdminToken)
	c.StateFile = getEnv("RETRO_STATE_FILE", c.StateFile)
	c.LogLevel = getEnv("RETRO_LOG_LEVEL", c.LogLevel)
	c.HTTPTimeout = getEnvAsSeconds("RETRO_HTTP_TIMEOUT", c.HTTPTimeout)
	c.ReconnectWait = getEnvAsSeconds("RETRO_RECONNECT_WAIT", c.ReconnectWait)
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	switch c.PushTransport {
	case TransportSSE, TransportWebSocket, TransportNATS:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, c.PushTransport)
	}
	if c.APIURL == "" {
		return errors.New("api url must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	return nil
}

// PushBaseURL returns the base URL the websocket transport dials, normally a
// relay. It falls back to APIURL.
func (c Config) PushBaseURL() string {
	if c.PushURL != "" {
		return c.PushURL
	}
	return c.APIURL
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".retrospekt/state.yaml"
	}
	return filepath.Join(home, ".retrospekt", "state.yaml")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
