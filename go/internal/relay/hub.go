package relay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/retrospekt/go/internal/push"
)

// HubConfig holds configuration for websocket subscribers
type HubConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
	Clock           clockwork.Clock
}

// DefaultHubConfig returns default websocket configuration
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024, // subscribers only send control frames
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		SendBuffer:      16,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// Hub fans snapshots out to websocket subscribers, one pool per session.
// The last snapshot of every session is kept so a new subscriber starts from
// the current board instead of waiting for the next change.
type Hub struct {
	config   HubConfig
	upgrader websocket.Upgrader

	mu       sync.Mutex
	tracked  map[string]bool
	sessions map[string]map[*subscriber]bool
	latest   map[string][]byte
	closed   bool
}

type subscriber struct {
	id          string
	sessionID   string
	conn        *websocket.Conn
	send        chan []byte
	hub         *Hub
	connectedAt time.Time
}

// NewHub creates a new Hub
func NewHub(config HubConfig) *Hub {
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = 16
	}
	return &Hub{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		tracked:  make(map[string]bool),
		sessions: make(map[string]map[*subscriber]bool),
		latest:   make(map[string][]byte),
	}
}

// Track allows subscribers for the given sessions. Others are refused with 404.
func (h *Hub) Track(sessionIDs ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range sessionIDs {
		h.tracked[id] = true
	}
}

// RegisterRoutes serves the push websocket endpoint on mux.
func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+fmt.Sprintf(push.SocketPathFormat, "{id}"), h.handleSubscribe)
}

func (h *Hub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	h.mu.Lock()
	ok := h.tracked[sessionID] && !h.closed
	h.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Upgrade replies with an HTTP error itself on failure
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("websocket upgrade failed")
		return
	}

	sub := &subscriber{
		id:          uuid.New().String(),
		sessionID:   sessionID,
		conn:        conn,
		send:        make(chan []byte, h.config.SendBuffer),
		hub:         h,
		connectedAt: h.config.Clock.Now(),
	}
	if !h.register(sub) {
		conn.Close()
		return
	}

	go sub.writePump()
	go sub.readPump()

	log.Info().
		Str("subscriber_id", sub.id).
		Str("session_id", sessionID).
		Str("remote", r.RemoteAddr).
		Msg("websocket subscriber connected")
}

// register adds sub to its session pool and queues the latest snapshot.
func (h *Hub) register(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if h.sessions[sub.sessionID] == nil {
		h.sessions[sub.sessionID] = make(map[*subscriber]bool)
	}
	h.sessions[sub.sessionID][sub] = true

	if frame, ok := h.latest[sub.sessionID]; ok {
		sub.send <- frame
	}

	log.Debug().
		Str("subscriber_id", sub.id).
		Str("session_id", sub.sessionID).
		Int("subscribers", len(h.sessions[sub.sessionID])).
		Msg("subscriber registered")
	return true
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(sub)
}

func (h *Hub) unregisterLocked(sub *subscriber) {
	pool, ok := h.sessions[sub.sessionID]
	if !ok || !pool[sub] {
		return
	}
	delete(pool, sub)
	close(sub.send)
	if len(pool) == 0 {
		delete(h.sessions, sub.sessionID)
	}

	log.Debug().
		Str("subscriber_id", sub.id).
		Str("session_id", sub.sessionID).
		Dur("connected_for", h.config.Clock.Since(sub.connectedAt)).
		Msg("subscriber unregistered")
}

// Publish implements Publisher. The subject carries the session id. A
// subscriber whose buffer is full is dropped rather than slowing the others.
func (h *Hub) Publish(_ context.Context, subject string, data []byte) error {
	sessionID := strings.TrimPrefix(subject, push.SubjectPrefix)
	frame := append([]byte(nil), data...)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.latest[sessionID] = frame

	for sub := range h.sessions[sessionID] {
		select {
		case sub.send <- frame:
		default:
			log.Warn().
				Str("subscriber_id", sub.id).
				Str("session_id", sessionID).
				Msg("subscriber send buffer full, closing connection")
			h.unregisterLocked(sub)
		}
	}
	return nil
}

// Subscribers returns the number of connected subscribers across sessions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, pool := range h.sessions {
		n += len(pool)
	}
	return n
}

// Close disconnects every subscriber with a close frame and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, pool := range h.sessions {
		for sub := range pool {
			h.unregisterLocked(sub)
		}
	}
}

func (s *subscriber) writePump() {
	cfg := s.hub.config
	ticker := cfg.Clock.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		s.hub.unregister(s)
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Str("subscriber_id", s.id).Msg("failed to write snapshot")
				return
			}

		case <-ticker.Chan():
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("subscriber_id", s.id).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump only keeps the read deadline moving; subscribers have nothing to say.
func (s *subscriber) readPump() {
	cfg := s.hub.config
	defer func() {
		s.hub.unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(cfg.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("subscriber_id", s.id).Msg("unexpected websocket close")
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	}
}

var _ Publisher = (*Hub)(nil)
