package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcdev12/retrospekt/go/internal/push"
)

func newHubServer(t *testing.T, sessions ...string) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(DefaultHubConfig())
	hub.Track(sessions...)

	mux := http.NewServeMux()
	hub.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dialHub(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + sessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", sessionID, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	return string(data)
}

func waitSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Subscribers() = %d, want %d", hub.Subscribers(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDeliversToSessionSubscribers(t *testing.T) {
	hub, srv := newHubServer(t, "s1", "s2")

	c1 := dialHub(t, srv, "s1")
	c2 := dialHub(t, srv, "s2")
	waitSubscribers(t, hub, 2)

	ctx := context.Background()
	if err := hub.Publish(ctx, push.Subject("s2"), []byte(`{"id":"s2"}`)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := hub.Publish(ctx, push.Subject("s1"), []byte(snapshotS1)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if got := readFrame(t, c1); got != snapshotS1 {
		t.Errorf("s1 frame = %s, want %s", got, snapshotS1)
	}
	if got := readFrame(t, c2); got != `{"id":"s2"}` {
		t.Errorf("s2 frame = %s", got)
	}
}

func TestHubSendsLatestSnapshotOnConnect(t *testing.T) {
	hub, srv := newHubServer(t, "s1")

	ctx := context.Background()
	hub.Publish(ctx, push.Subject("s1"), []byte(`{"id":"s1","old":true}`))
	hub.Publish(ctx, push.Subject("s1"), []byte(snapshotS1))

	conn := dialHub(t, srv, "s1")
	if got := readFrame(t, conn); got != snapshotS1 {
		t.Errorf("first frame = %s, want latest snapshot", got)
	}
}

func TestHubRejectsUntrackedSession(t *testing.T) {
	_, srv := newHubServer(t, "s1")

	resp, err := http.Get(srv.URL + "/api/v1/sessions/other/ws")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestHubCloseDisconnectsSubscribers(t *testing.T) {
	hub, srv := newHubServer(t, "s1")

	conn := dialHub(t, srv, "s1")
	waitSubscribers(t, hub, 1)

	hub.Close()
	hub.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going away close", err)
	}
	if n := hub.Subscribers(); n != 0 {
		t.Errorf("Subscribers() = %d after Close, want 0", n)
	}
	if err := hub.Publish(context.Background(), push.Subject("s1"), []byte(snapshotS1)); err != nil {
		t.Errorf("Publish() after Close error = %v", err)
	}
}

func TestHubFeedsWebSocketTransport(t *testing.T) {
	hub, srv := newHubServer(t, "s1")

	frames := make(chan string, 4)
	transport := push.NewWebSocketTransport(push.DefaultWebSocketConfig(srv.URL))
	sub, err := transport.Subscribe(context.Background(), "s1", func(frame []byte) {
		frames <- string(frame)
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	waitSubscribers(t, hub, 1)
	hub.Publish(context.Background(), push.Subject("s1"), []byte(snapshotS1))

	select {
	case got := <-frames:
		if got != snapshotS1 {
			t.Errorf("frame = %s, want %s", got, snapshotS1)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestFanoutPublishesToAll(t *testing.T) {
	first := &recordingPublisher{failures: 1}
	second := &recordingPublisher{}

	err := Fanout{first, second}.Publish(context.Background(), "retro.sessions.s1", []byte("x"))
	if err == nil {
		t.Fatal("Publish() error = nil, want the first publisher's failure")
	}
	if len(second.messages) != 1 {
		t.Errorf("second publisher got %d messages, want 1", len(second.messages))
	}

	err = Fanout{PublisherFunc(func(context.Context, string, []byte) error { return nil })}.Publish(context.Background(), "s", nil)
	if err != nil {
		t.Errorf("Publish() error = %v, want nil", err)
	}
}
