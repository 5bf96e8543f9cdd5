package wshub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/transitlk/bus-tracker/pkg/logger"
	"github.com/transitlk/bus-tracker/pkg/uuid"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newTestHub spins up a websocket server that registers every incoming
// connection in the hub, and returns a dial function for clients.
func newTestHub(t *testing.T) (*Hub, func() (*websocket.Conn, *Conn)) {
	t.Helper()

	hub := New(logger.InitLogger("wshub-test", logger.LevelError))
	serverConns := make(chan *Conn, 16)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		conn := NewConn(c)
		if _, err := hub.Add(conn); err != nil {
			t.Errorf("add failed: %v", err)
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	dial := func() (*websocket.Conn, *Conn) {
		client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		t.Cleanup(func() { client.Close() })

		select {
		case sc := <-serverConns:
			return client, sc
		case <-time.After(2 * time.Second):
			t.Fatal("server connection not registered")
			return nil, nil
		}
	}

	return hub, dial
}

func TestAdd_NilConn(t *testing.T) {
	hub := New(logger.InitLogger("wshub-test", logger.LevelError))
	if _, err := hub.Add(nil); err != ErrEmptyConn {
		t.Fatalf("expected ErrEmptyConn, got %v", err)
	}
}

func TestRemove_UnknownIDIsNoop(t *testing.T) {
	hub, dial := newTestHub(t)
	dial()

	hub.Remove(uuid.MustNew()) // never registered
	hub.Remove(uuid.MustNew())

	if got := hub.Len(); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	hub, dial := newTestHub(t)
	_, sc := dial()

	hub.Remove(sc.ID())
	hub.Remove(sc.ID()) // second removal must be a no-op

	if got := hub.Len(); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
}

func TestBroadcast_AllSubscribersReceive(t *testing.T) {
	hub, dial := newTestHub(t)

	clients := make([]*websocket.Conn, 3)
	for i := range clients {
		clients[i], _ = dial()
	}

	msg := map[string]any{"busNumber": "B12", "speed": 15.5}
	delivered, dropped := hub.Broadcast(context.Background(), msg)
	if delivered != 3 || dropped != 0 {
		t.Fatalf("delivered=%d dropped=%d, want 3/0", delivered, dropped)
	}

	for i, client := range clients {
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got map[string]any
		if err := client.ReadJSON(&got); err != nil {
			t.Fatalf("client %d read failed: %v", i, err)
		}
		if got["busNumber"] != "B12" {
			t.Errorf("client %d: unexpected payload %v", i, got)
		}
	}
}

func TestBroadcast_FailedSubscriberIsDropped(t *testing.T) {
	hub, dial := newTestHub(t)

	healthy1, _ := dial()
	_, broken := dial()
	healthy2, _ := dial()

	// Kill the middle subscriber's transport; the next send to it must fail.
	broken.Close()

	delivered, dropped := hub.Broadcast(context.Background(), map[string]any{"busNumber": "B7"})
	if delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}
	if dropped != 1 {
		t.Fatalf("expected 1 dropped subscriber, got %d", dropped)
	}
	if got := hub.Len(); got != 2 {
		t.Fatalf("expected broken subscriber removed, registry has %d", got)
	}

	for i, client := range []*websocket.Conn{healthy1, healthy2} {
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got map[string]any
		if err := client.ReadJSON(&got); err != nil {
			t.Fatalf("healthy client %d read failed: %v", i, err)
		}
	}
}

func TestBroadcast_ConcurrentWithSubscribe(t *testing.T) {
	hub, dial := newTestHub(t)

	for range 4 {
		dial()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 20 {
			hub.Broadcast(context.Background(), map[string]any{"busNumber": "B1"})
		}
	}()

	// Mutate the registry while broadcasts are in flight.
	for range 4 {
		_, sc := dial()
		hub.Remove(sc.ID())
	}

	<-done
	if got := hub.Len(); got != 4 {
		t.Fatalf("expected 4 subscribers, got %d", got)
	}
}
