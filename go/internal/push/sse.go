package push

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	// StreamPathFormat is the SSE endpoint for one session.
	StreamPathFormat = "/api/v1/sessions/%s/stream"

	maxFrameSize = 4 * 1024 * 1024
)

// SSEConfig holds configuration for the event-stream transport
type SSEConfig struct {
	BaseURL       string
	HTTPClient    *http.Client
	ReconnectWait time.Duration
	Headers       map[string]string
	Clock         clockwork.Clock
}

// DefaultSSEConfig returns default event-stream configuration
func DefaultSSEConfig(baseURL string) SSEConfig {
	return SSEConfig{
		BaseURL: baseURL,
		// No client timeout, the stream is long-lived and bounded by ctx
		HTTPClient:    &http.Client{},
		ReconnectWait: 3 * time.Second,
		Clock:         clockwork.NewRealClock(),
	}
}

// SSETransport reads snapshots from a text/event-stream endpoint. Like a browser
// EventSource it reconnects after drops, honours retry: hints and resumes with
// Last-Event-ID.
type SSETransport struct {
	config SSEConfig
}

// NewSSETransport creates a new SSE transport
func NewSSETransport(config SSEConfig) *SSETransport {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if config.ReconnectWait <= 0 {
		config.ReconnectWait = 3 * time.Second
	}
	return &SSETransport{config: config}
}

// StreamURL returns the event-stream URL for a session.
func (t *SSETransport) StreamURL(sessionID string) string {
	return strings.TrimRight(t.config.BaseURL, "/") + fmt.Sprintf(StreamPathFormat, url.PathEscape(sessionID))
}

// Subscribe starts streaming in the background and returns immediately.
func (t *SSETransport) Subscribe(ctx context.Context, sessionID string, onFrame FrameHandler) (Subscription, error) {
	if _, err := url.Parse(t.config.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &sseSubscription{
		transport: t,
		url:       t.StreamURL(sessionID),
		sessionID: sessionID,
		onFrame:   onFrame,
		retry:     t.config.ReconnectWait,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go sub.run()

	return sub, nil
}

type sseSubscription struct {
	transport *SSETransport
	url       string
	sessionID string
	onFrame   FrameHandler

	// retry and lastEventID are only touched by the run goroutine
	retry       time.Duration
	lastEventID string

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

func (s *sseSubscription) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

func (s *sseSubscription) run() {
	defer close(s.done)

	for {
		err := s.stream()
		if s.ctx.Err() != nil {
			return
		}

		log.Debug().
			Err(err).
			Str("session_id", s.sessionID).
			Dur("retry", s.retry).
			Msg("event stream interrupted, reconnecting")

		select {
		case <-s.ctx.Done():
			return
		case <-s.transport.config.Clock.After(s.retry):
		}
	}
}

func (s *sseSubscription) stream() error {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range s.transport.config.Headers {
		req.Header.Set(k, v)
	}
	if s.lastEventID != "" {
		req.Header.Set("Last-Event-ID", s.lastEventID)
	}

	resp, err := s.transport.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open stream: unexpected status %d", resp.StatusCode)
	}

	log.Debug().Str("session_id", s.sessionID).Msg("event stream open")

	return s.read(resp.Body)
}

// read consumes events until the body ends. Only unnamed or "message" events are
// forwarded.
func (s *sseSubscription) read(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	var (
		data      strings.Builder
		hasData   bool
		eventType string
	)

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if hasData && (eventType == "" || eventType == "message") {
				s.onFrame([]byte(data.String()))
			}
			data.Reset()
			hasData = false
			eventType = ""
			continue
		}

		// Comment lines are keepalives
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}

		switch field {
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "event":
			eventType = value
		case "id":
			if !strings.ContainsRune(value, 0) {
				s.lastEventID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				s.retry = time.Duration(ms) * time.Millisecond
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

var _ Transport = (*SSETransport)(nil)
