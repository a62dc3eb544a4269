package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(ServeWS(hub, nil))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber count never reached %d (have %d)", want, hub.SubscriberCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDeliversTaggedEnvelope(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dialTestHub(t, hub)
	waitForSubscribers(t, hub, 1)

	hub.Publish(EventCheckinUpdate, map[string]string{"status": "ALLOWED"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Event != EventCheckinUpdate {
		t.Fatalf("event: %s", envelope.Event)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["status"] != "ALLOWED" {
		t.Fatalf("unexpected data %+v", envelope.Data)
	}
}

func TestHubCountsAndClosesSubscribers(t *testing.T) {
	hub := NewHub(nil, nil)
	if hub.SubscriberCount() != 0 {
		t.Fatal("expected zero subscribers on a fresh hub")
	}

	conn := dialTestHub(t, hub)
	waitForSubscribers(t, hub, 1)

	_ = conn.Close()
	waitForSubscribers(t, hub, 0)
}

func TestHubPublishWithoutSubscribersIsSafe(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Publish(EventDashboardUpdate, map[string]int{"total": 1})
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil, nil)

	// Register a raw client whose pumps never run so its buffer fills.
	c := &client{hub: hub, send: make(chan []byte, 1)}
	hub.register(c)

	hub.Publish(EventDashboardUpdate, 1)
	hub.Publish(EventDashboardUpdate, 2)

	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected slow subscriber to be dropped, have %d", hub.SubscriberCount())
	}
}
