package push

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// SocketPathFormat is the websocket endpoint for one session.
const SocketPathFormat = "/api/v1/sessions/%s/ws"

// WebSocketConfig holds configuration for websocket connections
type WebSocketConfig struct {
	BaseURL          string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
	ReconnectWait    time.Duration
	MaxMessageSize   int64
	ReadBufferSize   int
	WriteBufferSize  int
	Headers          http.Header
	Clock            clockwork.Clock
}

// DefaultWebSocketConfig returns default websocket configuration
func DefaultWebSocketConfig(baseURL string) WebSocketConfig {
	return WebSocketConfig{
		BaseURL:          baseURL,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		ReconnectWait:    2 * time.Second,
		MaxMessageSize:   maxFrameSize,
		ReadBufferSize:   4096,
		WriteBufferSize:  1024,
		Clock:            clockwork.NewRealClock(),
	}
}

// WebSocketTransport receives snapshots as websocket messages, one per frame.
type WebSocketTransport struct {
	config WebSocketConfig
	dialer *websocket.Dialer
}

// NewWebSocketTransport creates a new websocket transport
func NewWebSocketTransport(config WebSocketConfig) *WebSocketTransport {
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if config.ReconnectWait <= 0 {
		config.ReconnectWait = 2 * time.Second
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = maxFrameSize
	}
	return &WebSocketTransport{
		config: config,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
		},
	}
}

// SocketURL maps the http(s) base URL onto ws(s) for a session.
func (t *WebSocketTransport) SocketURL(sessionID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(t.config.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += fmt.Sprintf(SocketPathFormat, url.PathEscape(sessionID))
	return u.String(), nil
}

// Subscribe starts reading in the background and returns immediately.
func (t *WebSocketTransport) Subscribe(ctx context.Context, sessionID string, onFrame FrameHandler) (Subscription, error) {
	target, err := t.SocketURL(sessionID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &wsSubscription{
		transport: t,
		url:       target,
		sessionID: sessionID,
		onFrame:   onFrame,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go sub.run()

	return sub, nil
}

type wsSubscription struct {
	transport *WebSocketTransport
	url       string
	sessionID string
	onFrame   FrameHandler

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func (s *wsSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()

	if s.conn != nil {
		deadline := time.Now().Add(s.transport.config.WriteTimeout)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		return s.conn.Close()
	}
	return nil
}

func (s *wsSubscription) run() {
	defer close(s.done)

	for {
		err := s.readPump()
		if s.ctx.Err() != nil {
			return
		}

		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			log.Error().Err(err).Str("session_id", s.sessionID).Msg("websocket error")
		} else {
			log.Debug().Err(err).Str("session_id", s.sessionID).Msg("websocket closed, reconnecting")
		}

		select {
		case <-s.ctx.Done():
			return
		case <-s.transport.config.Clock.After(s.transport.config.ReconnectWait):
		}
	}
}

func (s *wsSubscription) dial() (*websocket.Conn, error) {
	conn, resp, err := s.transport.dialer.DialContext(s.ctx, s.url, s.transport.config.Headers)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.url, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		conn.Close()
		return nil, errClosed
	}
	s.conn = conn
	return conn, nil
}

func (s *wsSubscription) readPump() error {
	conn, err := s.dial()
	if err != nil {
		return err
	}
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
	}()

	cfg := s.transport.config
	conn.SetReadLimit(cfg.MaxMessageSize)
	extend := func() {
		if cfg.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		}
	}
	extend()
	conn.SetPingHandler(func(appData string) error {
		extend()
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(cfg.WriteTimeout))
	})
	conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	log.Debug().Str("session_id", s.sessionID).Str("url", s.url).Msg("websocket connected")

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		extend()

		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		s.onFrame(message)
	}
}

var _ Transport = (*WebSocketTransport)(nil)
